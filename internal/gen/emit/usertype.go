package emit

import (
	"fmt"

	"github.com/nino-lang/nino-go/internal/driver/config"
	"github.com/nino-lang/nino-go/internal/gen/diag"
	"github.com/nino-lang/nino-go/internal/gen/emit/render"
	"github.com/nino-lang/nino-go/internal/gen/extract"
	"github.com/nino-lang/nino-go/internal/gen/graph"
	"github.com/nino-lang/nino-go/internal/gen/metadata"
)

// Emitter drives C4 (user types) and C5 (structural builtins, builtin.go)
// against a finished NinoGraph. It holds no per-call state beyond what it
// needs to look up sub-types and record diagnostics, so one Emitter is
// safely shared across the concurrent per-node emission driver.go runs
// (spec.md §5: "C4/C5 can emit in parallel per node with no shared mutable
// state aside from the final artifact sink").
type Emitter struct {
	Graph   *graph.NinoGraph
	Options config.Options
	Diags   *diag.Collector
}

// New returns an Emitter bound to g, opts, and diags.
func New(g *graph.NinoGraph, opts config.Options, diags *diag.Collector) *Emitter {
	return &Emitter{Graph: g, Options: opts, Diags: diags}
}

// EmitUserType implements C4 (spec.md §4.4) for one NinoType: it renders the
// Serialize/Deserialize pair plus registration glue into a single generated
// Go source file, named "<SimpleName>_nino.go" by convention in driver.go.
func (e *Emitter) EmitUserType(nt extract.NinoType) ([]byte, error) {
	name := exportedName(nt.Type)
	loc := diag.Location{Package: nt.Type.Namespace, Type: nt.Type.SimpleName}

	b := render.New()
	b.P("// Code generated by nino. DO NOT EDIT.")
	b.P("")
	b.P("package %s", packageClause(nt.Type))
	b.P("")
	b.P("import (")
	b.In()
	b.P(`"fmt"`)
	b.P("")
	b.P(`"github.com/nino-lang/nino-go/ninowire"`)
	b.Out()
	b.P(")")
	b.P("")

	b.P("const %sTypeID uint32 = 0x%08x", name, nt.Type.TypeId)
	b.P("")

	if nt.IsPolymorphic {
		e.emitPolyMarker(b, nt, name)
	}

	if err := e.emitSerializer(b, nt, name, loc); err != nil {
		return nil, err
	}
	if err := e.emitDeserializer(b, nt, name, loc); err != nil {
		return nil, err
	}
	e.emitRegistration(b, nt, name)

	return b.Source()
}

// emitPolyMarker emits the marker interface and the promoted marker method
// that makes every sub-type (including transitively embedded ones, via Go's
// ordinary embedded-method promotion) satisfy it automatically, without
// touching the user's own declaration file — methods can be added to a type
// from any file in the same package.
func (e *Emitter) emitPolyMarker(b *render.Buffer, nt extract.NinoType, name string) {
	b.P("// %sPoly is satisfied by %s and every type embedding it, via Go's", name, name)
	b.P("// ordinary embedded-method promotion.")
	b.P("type %sPoly interface { is%sPoly() }", name, name)
	b.P("")
	b.P("func (%s) is%sPoly() {}", nt.Type.SimpleName, name)
	b.P("")
}

func (e *Emitter) emitSerializer(b *render.Buffer, nt extract.NinoType, name string, loc diag.Location) error {
	recvType := nt.Type.SimpleName
	paramType := recvType
	if nt.IsPolymorphic {
		paramType = name + "Poly"
	}

	b.P("func %s(value %s, w ninowire.Writer) error {", serializeFuncName(nt.Type), paramType)
	b.In()

	if nt.IsPolymorphic {
		b.P("switch v := value.(type) {")
		for _, sub := range e.Graph.DeepestFirstSubTypes(nt.Type.TypeId) {
			subName := exportedName(sub.Type)
			b.P("case %s:", sub.Type.SimpleName)
			b.In()
			b.P("w.WriteUint32(%sTypeID)", subName)
			if err := e.writeMembers(b, sub, loc); err != nil {
				return err
			}
			b.Out()
		}
		if !nt.Type.IsAbstract {
			// An abstract (interface) declared type can never itself be the
			// concrete runtime value being serialized, so no case for it is
			// emitted (spec.md §4.4.1: "omit the default case when the
			// declared type is abstract").
			b.P("case %s:", recvType)
			b.In()
			b.P("w.WriteUint32(%sTypeID)", name)
			if err := e.writeMembers(b, nt, loc); err != nil {
				return err
			}
			b.Out()
		}
		b.P("default:")
		b.In()
		b.P(`return &ninowire.InvalidPayloadError{TypeName: "%s", Reason: fmt.Sprintf("unregistered runtime type %%T", v)}`, name)
		b.Out()
		b.P("}")
	} else {
		b.P("w.WriteUint32(%sTypeID)", name)
		if err := e.writeMembers(b, nt, loc); err != nil {
			return err
		}
	}

	b.P("return nil")
	b.Out()
	b.P("}")
	b.P("")
	return nil
}

// writeMembers emits the member-write body for exactly one concrete
// NinoType's own member list (not its ancestors' members — those are
// written by the ancestor's own branch, since each sub-type in the graph
// carries only its directly-declared members per extract.NinoType). Adjacent
// bulk-eligible members are grouped per spec.md §4.4.1, up to
// Options.MaxBulkRun.
func (e *Emitter) writeMembers(b *render.Buffer, nt extract.NinoType, loc diag.Location) error {
	maxRun := e.Options.MaxBulkRun
	if maxRun <= 0 {
		maxRun = 16
	}

	members := nt.Members
	for i := 0; i < len(members); {
		if isBulkEligible(members[i]) {
			j := i + 1
			for j < len(members) && j-i < maxRun && isBulkEligible(members[j]) {
				j++
			}
			if j-i > 1 {
				e.writeBulkRun(b, members[i:j])
				i = j
				continue
			}
		}
		if err := e.writeSingleMember(b, members[i], loc); err != nil {
			return err
		}
		i++
	}
	return nil
}

func (e *Emitter) writeBulkRun(b *render.Buffer, run []extract.NinoMember) {
	b.P("w.WriteBulkUnmanaged(ninowire.BulkCopy(&struct {")
	b.In()
	for i, m := range run {
		b.P("F%d %s", i, goFieldType(m.Type))
	}
	b.Out()
	b.Raw("}{")
	for i, m := range run {
		if i > 0 {
			b.Raw(", ")
		}
		b.Raw("value." + m.Name)
	}
	b.Raw("}))\n")
}

func (e *Emitter) writeSingleMember(b *render.Buffer, m extract.NinoMember, loc diag.Location) error {
	access := "value." + m.Name
	framed := e.Options.WeakVersionTolerance && !m.Type.IsUnmanaged

	if framed {
		b.P("{")
		b.In()
		b.P("off := w.Reserve()")
	}

	if err := e.writeScalar(b, access, m, loc); err != nil {
		return err
	}

	if framed {
		b.P("w.PatchLength(off)")
		b.Out()
		b.P("}")
	}
	return nil
}

func (e *Emitter) writeScalar(b *render.Buffer, access string, m extract.NinoMember, loc diag.Location) error {
	t := m.Type
	switch t.SpecialType {
	case metadata.SpecialBool:
		b.P("w.WriteBool(%s)", access)
	case metadata.SpecialInt8, metadata.SpecialInt16, metadata.SpecialInt32:
		b.P("w.WriteInt32(int32(%s))", access)
	case metadata.SpecialInt64:
		b.P("w.WriteInt64(%s)", access)
	case metadata.SpecialUint8, metadata.SpecialByte, metadata.SpecialUint16, metadata.SpecialUint32:
		b.P("w.WriteUint32(uint32(%s))", access)
	case metadata.SpecialUint64:
		b.P("w.WriteUint64(%s)", access)
	case metadata.SpecialFloat32:
		b.P("w.WriteFloat32(%s)", access)
	case metadata.SpecialFloat64:
		b.P("w.WriteFloat64(%s)", access)
	case metadata.SpecialString:
		if m.IsUTF8String {
			b.P("w.WriteUTF8String(%s)", access)
		} else {
			b.P("w.WriteString(%s)", access)
		}
	default:
		if m.CustomFormatter != nil {
			b.P("Serialize%s(%s, w)", exportedName(*m.CustomFormatter), access)
			return nil
		}
		if _, ok := e.Graph.Get(t.TypeId); ok {
			b.P("if err := %s(%s, w); err != nil {", serializeFuncName(t), access)
			b.In()
			b.P("return err")
			b.Out()
			b.P("}")
			return nil
		}
		if isBuiltinShape(t) {
			b.P("if err := %s(%s, w); err != nil {", serializeFuncName(t), access)
			b.In()
			b.P("return err")
			b.Out()
			b.P("}")
			return nil
		}
		// Not a known NinoType and not a structural builtin shape: no
		// resolvable codec for this member (spec.md §7 "MissingMember").
		// Emit a comment-only placeholder and keep the rest of the type's
		// emission going.
		if e.Diags != nil {
			e.Diags.MissingMember(diag.Location{Package: loc.Package, Type: loc.Type, Member: m.Name}, "no resolvable codec for %s", t.DisplayName)
		}
		b.P("// MissingMember: no resolvable codec for %s (%s)", m.Name, t.DisplayName)
	}
	return nil
}

func (e *Emitter) emitDeserializer(b *render.Buffer, nt extract.NinoType, name string, loc diag.Location) error {
	retType := nt.Type.SimpleName
	if nt.IsPolymorphic {
		retType = name + "Poly"
	}

	b.P("func %s(r ninowire.Reader) (%s, error) {", deserializeFuncName(nt.Type), retType)
	b.In()

	if e.Options.WeakVersionTolerance {
		b.P("if r.Eof() {")
		b.In()
		b.P("var zero %s", retType)
		b.P("return zero, nil")
		b.Out()
		b.P("}")
	}

	b.P("id := r.ReadUint32()")
	b.P("switch id {")
	b.P("case ninowire.NullTypeID:")
	b.In()
	b.P("var zero %s", retType)
	b.P("return zero, nil")
	b.Out()

	if nt.IsPolymorphic {
		for _, sub := range e.Graph.DeepestFirstSubTypes(nt.Type.TypeId) {
			subName := exportedName(sub.Type)
			b.P("case %sTypeID:", subName)
			b.In()
			if err := e.readCase(b, sub, loc); err != nil {
				return err
			}
			b.Out()
		}
	}
	if !nt.Type.IsAbstract {
		b.P("case %sTypeID:", name)
		b.In()
		if err := e.readCase(b, nt, loc); err != nil {
			return err
		}
		b.Out()
	}

	b.P("default:")
	b.In()
	b.P("var zero %s", retType)
	b.P(`return zero, &ninowire.InvalidPayloadError{TypeName: "%s", Reason: fmt.Sprintf("unknown polymorphic id 0x%%08x", id)}`, name)
	b.Out()
	b.P("}")

	b.Out()
	b.P("}")
	b.P("")
	return nil
}

// readCase emits the body that reads one concrete sub-type's members and
// constructs it, returning the finished value (possibly boxed in the base
// interface type by the caller's return, Go widens automatically).
func (e *Emitter) readCase(b *render.Buffer, nt extract.NinoType, loc diag.Location) error {
	locals := make([]string, len(nt.Members))
	for i, m := range nt.Members {
		locals[i] = fmt.Sprintf("f%d", i)
		b.P("var %s %s", locals[i], goFieldType(m.Type))
	}

	maxRun := e.Options.MaxBulkRun
	if maxRun <= 0 {
		maxRun = 16
	}
	for i := 0; i < len(nt.Members); {
		if isBulkEligible(nt.Members[i]) {
			j := i + 1
			for j < len(nt.Members) && j-i < maxRun && isBulkEligible(nt.Members[j]) {
				j++
			}
			if j-i > 1 {
				e.readBulkRun(b, nt.Members[i:j], locals[i:j])
				i = j
				continue
			}
		}
		if err := e.readSingleMember(b, nt.Members[i], locals[i], loc); err != nil {
			return err
		}
		i++
	}

	return e.construct(b, nt, locals)
}

func (e *Emitter) readBulkRun(b *render.Buffer, run []extract.NinoMember, locals []string) {
	b.P("{")
	b.In()
	b.P("var bulk struct {")
	b.In()
	for i, m := range run {
		b.P("F%d %s", i, goFieldType(m.Type))
	}
	b.Out()
	b.P("}")
	b.P("ninowire.ReadBulk(r, &bulk)")
	for i, l := range locals {
		b.P("%s = bulk.F%d", l, i)
	}
	b.Out()
	b.P("}")
}

func (e *Emitter) readSingleMember(b *render.Buffer, m extract.NinoMember, local string, loc diag.Location) error {
	t := m.Type
	switch t.SpecialType {
	case metadata.SpecialBool:
		b.P("%s = r.ReadBool()", local)
	case metadata.SpecialInt8:
		b.P("%s = int8(r.ReadInt32())", local)
	case metadata.SpecialInt16:
		b.P("%s = int16(r.ReadInt32())", local)
	case metadata.SpecialInt32:
		b.P("%s = r.ReadInt32()", local)
	case metadata.SpecialInt64:
		b.P("%s = r.ReadInt64()", local)
	case metadata.SpecialUint8, metadata.SpecialByte:
		b.P("%s = uint8(r.ReadUint32())", local)
	case metadata.SpecialUint16:
		b.P("%s = uint16(r.ReadUint32())", local)
	case metadata.SpecialUint32:
		b.P("%s = r.ReadUint32()", local)
	case metadata.SpecialUint64:
		b.P("%s = r.ReadUint64()", local)
	case metadata.SpecialFloat32:
		b.P("%s = r.ReadFloat32()", local)
	case metadata.SpecialFloat64:
		b.P("%s = r.ReadFloat64()", local)
	case metadata.SpecialString:
		if m.IsUTF8String {
			b.P("%s = r.ReadUTF8String()", local)
		} else {
			b.P("%s = r.ReadString()", local)
		}
	default:
		if m.CustomFormatter != nil {
			b.P("%s, _ = Deserialize%s(r)", local, exportedName(*m.CustomFormatter))
			return nil
		}
		if _, ok := e.Graph.Get(t.TypeId); ok {
			b.P("{")
			b.In()
			b.P("v, err := %s(r)", deserializeFuncName(t))
			b.P("if err != nil {")
			b.In()
			b.P("var zeroOuter %s", goFieldType(t))
			b.P("_ = zeroOuter")
			b.P("return zeroOuter, err")
			b.Out()
			b.P("}")
			b.P("%s = v", local)
			b.Out()
			b.P("}")
			return nil
		}
		if isBuiltinShape(t) {
			b.P("{")
			b.In()
			b.P("v, err := %s(r)", deserializeFuncName(t))
			b.P("if err != nil {")
			b.In()
			b.P("var zeroOuter %s", goFieldType(t))
			b.P("_ = zeroOuter")
			b.P("return zeroOuter, err")
			b.Out()
			b.P("}")
			b.P("%s = v", local)
			b.Out()
			b.P("}")
			return nil
		}
		if e.Diags != nil {
			e.Diags.MissingMember(diag.Location{Package: loc.Package, Type: loc.Type, Member: m.Name}, "no resolvable codec for %s", t.DisplayName)
		}
		b.P("// MissingMember: no resolvable codec for %s (%s)", m.Name, t.DisplayName)
	}
	return nil
}

// construct builds the finished value from locals, using the selected
// factory constructor when each of its parameters matches a member by name
// (matchingFactory), with the remaining members assigned afterwards
// (assignResidual), otherwise a plain composite literal. Generated code lives in the same package as the user's type
// (the idiomatic Go analogue of the spec's partial-class augmentation), so
// unexported members need no separate accessor shim: a direct field
// assignment is visible same-package code.
func (e *Emitter) construct(b *render.Buffer, nt extract.NinoType, locals []string) error {
	name := exportedName(nt.Type)

	if c, ok := matchingFactory(nt); ok {
		args := make([]string, len(c.Params))
		for i, p := range c.Params {
			for mi, m := range nt.Members {
				if m.Name == p.Name {
					args[i] = locals[mi]
					break
				}
			}
		}
		b.P("value := %s(%s)", c.FactoryMethodName, joinArgs(args))
		return e.assignResidual(b, nt, locals, c, "value")
	}

	b.P("value := %s{", nt.Type.SimpleName)
	b.In()
	for i, m := range nt.Members {
		b.P("%s: %s,", m.Name, locals[i])
	}
	b.Out()
	b.P("}")
	b.P("return value, nil")
	return nil
}

// assignResidual assigns every member not already consumed as a factory
// parameter directly onto value, then returns it.
func (e *Emitter) assignResidual(b *render.Buffer, nt extract.NinoType, locals []string, c extract.ConstructorInfo, varName string) error {
	consumed := map[string]bool{}
	for _, p := range c.Params {
		consumed[p.Name] = true
	}
	for i, m := range nt.Members {
		if consumed[m.Name] {
			continue
		}
		b.P("%s.%s = %s", varName, m.Name, locals[i])
	}
	b.P("return %s, nil", varName)
	return nil
}

// matchingFactory returns the leading factory constructor when its
// parameters are each satisfied by name against nt's own member list
// (spec.md §4.1: "the accessible constructor with the fewest parameters",
// adapted here to the simpler factory-vs-literal binary choice a Go
// rendition of "constructor selection" collapses to; see extract/constructor.go).
func matchingFactory(nt extract.NinoType) (extract.ConstructorInfo, bool) {
	if len(nt.Constructors) == 0 {
		return extract.ConstructorInfo{}, false
	}
	c := nt.Constructors[0]
	if c.IsConstructor || c.FactoryMethodName == "" {
		return extract.ConstructorInfo{}, false
	}
	for _, p := range c.Params {
		found := false
		for _, m := range nt.Members {
			if m.Name == p.Name {
				found = true
				break
			}
		}
		if !found {
			return extract.ConstructorInfo{}, false
		}
	}
	return c, true
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// emitRegistration implements C4.3 (spec.md §4.4.3): a one-shot registrar
// installing the function pair into ninowire.Default, keyed by TypeId.
// Init() itself (idempotent under a lock, a single process-wide call) lives
// in driver.go, which calls every type's register func once.
func (e *Emitter) emitRegistration(b *render.Buffer, nt extract.NinoType, name string) {
	b.P("func register%s() {", name)
	b.In()
	b.P("ninowire.Default.Register(%sTypeID, func(value any, w ninowire.Writer) error {", name)
	b.In()
	if nt.IsPolymorphic {
		b.P("return %s(value.(%sPoly), w)", serializeFuncName(nt.Type), name)
	} else {
		b.P("return %s(value.(%s), w)", serializeFuncName(nt.Type), nt.Type.SimpleName)
	}
	b.Out()
	b.P("}, func(r ninowire.Reader) (any, error) {")
	b.In()
	b.P("return %s(r)", deserializeFuncName(nt.Type))
	b.Out()
	b.P("})")
	b.Out()
	b.P("}")
	b.P("")
}
