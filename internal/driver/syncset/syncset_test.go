package syncset

import (
	"sync"
	"testing"
)

func TestSyncset(t *testing.T) {
	s := New()
	if !s.Add("hello") {
		t.Error("Add() returned false for an empty set")
	}
	if s.Add("hello") {
		t.Error("Add('hello') returned true for a set containing 'hello'")
	}
	if !s.Add("world") {
		t.Error("Add('world') returned false for a set without 'world'")
	}
}

func TestNoRace(t *testing.T) {
	var wg sync.WaitGroup
	s := New()
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("hello")
		}()
	}
	wg.Wait()
}
