package extract

import (
	"go/types"
	"strings"
)

// selectConstructors implements the constructor-selection preference order
// of spec.md §4.1, adapted to Go's lack of a constructor keyword:
//
//  1. An explicit parameter ordering is not read: the tag parser accepts no
//     ctor option, so this rule folds into rule 2's factory check (see
//     findFactory).
//  2. A `New<TypeName>(...)` factory function in the same package whose
//     parameter names all match existing members, case-insensitively
//     (Go's analogue of "the primary constructor whose parameter names all
//     match existing members" for records).
//  3. The default: build via a composite literal with no constructor
//     parameters at all, assigning every member afterward. This is always
//     available for an exported struct and is therefore always returned
//     last, mirroring "the accessible constructor with the fewest
//     parameters" falling back to the zero-parameter case.
//
// Private (unexported) factories are excluded, matching "Private
// constructors are excluded."
func selectConstructors(named *types.Named, members []NinoMember) []ConstructorInfo {
	var out []ConstructorInfo

	if factory, ok := findFactory(named, members); ok {
		out = append(out, factory)
	}

	out = append(out, ConstructorInfo{IsConstructor: true, IsPrimaryConstructor: len(out) == 0})
	return out
}

// findFactory looks for an exported `New<SimpleName>` function in the same
// Go package as named whose parameters name-match members. This also plays
// the role of spec.md §4.1 rule (1), "the constructor or static factory
// carrying an explicit ordering attribute": since the factory's own
// parameter order is externally visible Go syntax (unlike a C# attribute),
// a found factory's parameter order *is* the explicit ordering, so rules
// (1) and (2) collapse into one check in this rendition.
func findFactory(named *types.Named, members []NinoMember) (ConstructorInfo, bool) {
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return ConstructorInfo{}, false
	}
	name := "New" + named.Obj().Name()
	obj := pkg.Scope().Lookup(name)
	fn, ok := obj.(*types.Func)
	if !ok || !fn.Exported() {
		return ConstructorInfo{}, false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return ConstructorInfo{}, false
	}

	byName := make(map[string]NinoMember, len(members))
	for _, m := range members {
		byName[strings.ToLower(m.Name)] = m
	}

	params := sig.Params()
	var ctorParams []ConstructorParam
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		m, ok := byName[strings.ToLower(p.Name())]
		if !ok {
			return ConstructorInfo{}, false // a parameter that isn't a member: not a primary-constructor shape
		}
		ctorParams = append(ctorParams, ConstructorParam{Name: m.Name, Type: m.Type})
	}
	if len(ctorParams) == 0 {
		return ConstructorInfo{}, false
	}

	return ConstructorInfo{
		Params:               ctorParams,
		IsPrimaryConstructor: true,
		IsConstructor:        false,
		FactoryMethodName:    name,
	}, true
}

// findRefDeserializeFactory implements spec.md §4.1 "Ref-deserialization
// factory": a public, static, zero-parameter method on the type that
// returns the same type. Go has no instance-vs-static method distinction,
// so "static" is modeled as a package-level function (not a method) named
// `<TypeName>RefDeserialize` returning the named type, the Go idiom closest
// to a static factory since Go methods always take a receiver.
func findRefDeserializeFactory(named *types.Named) string {
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return ""
	}
	name := named.Obj().Name() + "RefDeserialize"
	obj := pkg.Scope().Lookup(name)
	fn, ok := obj.(*types.Func)
	if !ok || !fn.Exported() {
		return ""
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return ""
	}
	if !types.Identical(sig.Results().At(0).Type(), named) {
		return ""
	}
	return name
}

// findCrossAssemblyCodec implements spec.md §4.1 "Cross-assembly codec
// discovery": a sibling type declared in a different, referenced package may
// already have generated `Serialize<Type>`/`Deserialize<Type>` functions
// (Go's analogue of a generated namespace's Serializer/Deserializer types)
// from an earlier, independent nino generate run over that package. It
// searches named's own declaring package first, then every package that
// package directly imports, so a type's codec resolves regardless of which
// package originally declared the generated pair; the first match wins.
func findCrossAssemblyCodec(named *types.Named) (serializerName, deserializerName string) {
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return "", ""
	}
	name := named.Obj().Name()

	if ser, de, ok := lookupCodecPair(pkg, name); ok {
		return ser, de
	}
	for _, imp := range pkg.Imports() {
		if ser, de, ok := lookupCodecPair(imp, name); ok {
			return ser, de
		}
	}
	return "", ""
}

// lookupCodecPair looks up Serialize<name>/Deserialize<name> in pkg's own
// scope, returning ok=true only when at least one of the pair resolves to an
// exported function.
func lookupCodecPair(pkg *types.Package, name string) (serializerName, deserializerName string, ok bool) {
	if pkg == nil {
		return "", "", false
	}
	if ser := pkg.Scope().Lookup("Serialize" + name); ser != nil {
		if fn, fok := ser.(*types.Func); fok && fn.Exported() {
			serializerName = fn.FullName()
		}
	}
	if de := pkg.Scope().Lookup("Deserialize" + name); de != nil {
		if fn, fok := de.(*types.Func); fok && fn.Exported() {
			deserializerName = fn.FullName()
		}
	}
	return serializerName, deserializerName, serializerName != "" || deserializerName != ""
}
