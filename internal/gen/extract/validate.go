package extract

import "go/types"

// validateGenerics implements spec.md §4.2 "Generic validity": reject types
// containing unbound generic parameters, mismatched type-argument arity, or
// type-parameter leaves in places where a concrete type is required. A
// failing type is silently skipped (no diagnostic unless a surviving type
// refers to it — left to the emitter, which already treats an unresolved
// member type as MissingMember per spec.md §7).
func validateGenerics(named *types.Named) (ok bool, reason string) {
	if named.TypeParams() != nil && named.TypeArgs() == nil {
		return false, "unbound generic type parameters (generic definition used without instantiation)"
	}
	if tp, ta := named.TypeParams(), named.TypeArgs(); tp != nil && ta != nil && tp.Len() != ta.Len() {
		return false, "mismatched type-argument arity"
	}
	if leaksTypeParam(named.Underlying(), map[types.Type]bool{}) {
		return false, "type-parameter leaf in a position requiring a concrete type"
	}
	return true, ""
}

func leaksTypeParam(t types.Type, seen map[types.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	switch u := t.(type) {
	case *types.TypeParam:
		return true
	case *types.Pointer:
		return leaksTypeParam(u.Elem(), seen)
	case *types.Slice:
		return leaksTypeParam(u.Elem(), seen)
	case *types.Array:
		return leaksTypeParam(u.Elem(), seen)
	case *types.Map:
		return leaksTypeParam(u.Key(), seen) || leaksTypeParam(u.Elem(), seen)
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if leaksTypeParam(u.Field(i).Type(), seen) {
				return true
			}
		}
		return false
	case *types.Named:
		if args := u.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				if leaksTypeParam(args.At(i), seen) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
