package extract

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"github.com/nino-lang/nino-go/ninoapi"
)

// tagOptions inspects st for a field of type ninoapi.Tag and, if present,
// parses its struct tag into attributeOptions (spec.md §4.2 "Recognised
// options on the attribute").
func tagOptions(st *types.Struct) (attributeOptions, bool) {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !isTagField(f) {
			continue
		}
		return parseAttributeTag(st.Tag(i)), true
	}
	return attributeOptions{}, false
}

// parseAttributeTag parses the `nino:"..."` value on a Tag field. The first
// comma-separated element must be the literal "type"; subsequent elements
// are options from ninoapi's Opt* constants.
func parseAttributeTag(tag string) attributeOptions {
	opts := defaultAttributeOptions()
	v := reflect.StructTag(tag).Get(ninoapi.TagKey)
	parts := strings.Split(v, ",")
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case ninoapi.OptContainNonPublicMembers:
			opts.containNonPublicMembers = true
		case ninoapi.OptNoAutoCollect:
			opts.autoCollect = false
		case ninoapi.OptNoInherit:
			opts.allowInheritance = false
		}
	}
	return opts
}

// memberOptions mirrors the per-member tag options of spec.md §4.2 "Member
// filter" and §3 NinoMember flags.
type memberOptions struct {
	skip      bool
	utf8      bool
	formatter string
}

func parseMemberTag(tag string) (memberOptions, error) {
	var opts memberOptions
	v, ok := reflect.StructTag(tag).Lookup(ninoapi.TagKey)
	if !ok {
		return opts, nil
	}
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		switch {
		case p == ninoapi.TagSkip:
			opts.skip = true
		case p == ninoapi.TagUTF8:
			opts.utf8 = true
		case strings.HasPrefix(p, ninoapi.TagFormatterPrefix):
			opts.formatter = strings.TrimPrefix(p, ninoapi.TagFormatterPrefix)
			if opts.formatter == "" {
				return opts, fmt.Errorf("empty formatter name in tag %q", tag)
			}
		case p == "":
			// allow a bare `nino:""` to mean "no options"
		default:
			return opts, fmt.Errorf("unrecognized nino tag option %q", p)
		}
	}
	return opts, nil
}

// taggedInterface resolves the real ninoapi.Tagged interface type as seen
// from pkg's import graph, so interface-implementation checks
// (searchInterfaces) use the genuine method set rather than a hand-built
// stand-in, which matters because Go identifies unexported interface
// methods (ninoTagged) by declaring package.
func taggedInterfaceFromPkg(pkg *types.Package) *types.Interface {
	if pkg == nil {
		return nil
	}
	for _, imp := range pkg.Imports() {
		if imp.Path() != ninoapiPackagePath {
			continue
		}
		obj := imp.Scope().Lookup("Tagged")
		tn, ok := obj.(*types.TypeName)
		if !ok {
			return nil
		}
		iface, ok := tn.Type().Underlying().(*types.Interface)
		if !ok {
			return nil
		}
		return iface
	}
	return nil
}
