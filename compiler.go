package jtd

import (
	"github.com/jtdgo/jtd/internal/jsonptr"
	"github.com/jtdgo/jtd/value"
)

var commonKeys = map[string]bool{"nullable": true, "metadata": true}

// Compile compiles a JSON value into a Root: a top-level AST node plus a
// flat table of named definitions. It implements spec §4.2.
func Compile(v value.Value) (*Root, error) {
	return compileRoot(v)
}

type compileCtx struct {
	defNames map[string]bool
}

func compileRoot(v value.Value) (*Root, error) {
	obj, ok := v.Object()
	if !ok {
		return nil, newCompileError(ErrKindBadSchemaType, "", "root schema must be a JSON object")
	}

	ctx := &compileCtx{defNames: map[string]bool{}}
	defs := NewOrderedNodeMap()

	defsVal := obj.Get("definitions")
	if !value.IsMissing(defsVal) {
		defsObj, ok := defsVal.Object()
		if !ok {
			return nil, newCompileError(ErrKindBadSchemaType, "/definitions", "definitions must be a JSON object")
		}
		// Pre-register every top-level definition name so forward refs
		// resolve before any definition body is compiled.
		for _, m := range defsObj.Members() {
			ctx.defNames[m.Key] = true
		}
		for _, m := range defsObj.Members() {
			path := jsonptr.Builder{}.Push("definitions").Push(m.Key)
			child, err := compileForm(m.Value, false, ctx, path)
			if err != nil {
				return nil, err
			}
			defs.Set(m.Key, child)
		}
	}

	top, err := compileForm(v, true, ctx, jsonptr.Builder{})
	if err != nil {
		return nil, err
	}

	return &Root{top: top, definitions: defs}, nil
}

// compileForm compiles a single schema object (isRoot indicates whether
// "definitions" may legally appear on it) into a Node.
func compileForm(v value.Value, isRoot bool, ctx *compileCtx, path jsonptr.Builder) (*Node, error) {
	obj, ok := v.Object()
	if !ok {
		return nil, newCompileError(ErrKindBadSchemaType, path.String(), "schema must be a JSON object")
	}

	if !isRoot && obj.Has("definitions") {
		return nil, newCompileError(ErrKindNestedDefinitions, path.Push("definitions").String(), "definitions may only appear on the root schema")
	}

	hasRef := obj.Has("ref")
	hasType := obj.Has("type")
	hasEnum := obj.Has("enum")
	hasElements := obj.Has("elements")
	hasValues := obj.Has("values")
	hasDiscriminator := obj.Has("discriminator")
	hasMapping := obj.Has("mapping")
	hasProperties := obj.Has("properties")
	hasOptionalProperties := obj.Has("optionalProperties")

	formsPresent := 0
	if hasRef {
		formsPresent++
	}
	if hasType {
		formsPresent++
	}
	if hasEnum {
		formsPresent++
	}
	if hasElements {
		formsPresent++
	}
	if hasValues {
		formsPresent++
	}
	if hasDiscriminator || hasMapping {
		formsPresent++
	}
	if hasProperties || hasOptionalProperties {
		formsPresent++
	}

	if formsPresent > 1 {
		return nil, newCompileError(ErrKindMultipleForms, path.String(), "schema carries keys from more than one form")
	}

	if hasMapping != hasDiscriminator {
		return nil, newCompileError(ErrKindMappingWithoutDiscriminator, path.String(), "discriminator and mapping must appear together")
	}

	var node *Node
	var err error

	switch {
	case hasRef:
		node, err = compileRef(obj, ctx, path)
	case hasType:
		node, err = compileType(obj, isRoot, path)
	case hasEnum:
		node, err = compileEnum(obj, isRoot, path)
	case hasElements:
		node, err = compileElements(obj, isRoot, ctx, path)
	case hasProperties || hasOptionalProperties:
		node, err = compileProperties(obj, isRoot, ctx, path)
	case hasValues:
		node, err = compileValues(obj, isRoot, ctx, path)
	case hasDiscriminator:
		node, err = compileDiscriminator(obj, isRoot, ctx, path)
	default:
		node, err = compileEmpty(obj, isRoot, path)
	}
	if err != nil {
		return nil, err
	}

	return applyNullable(obj, node, path)
}

func allowedKeys(extra ...string) map[string]bool {
	allowed := map[string]bool{}
	for k := range commonKeys {
		allowed[k] = true
	}
	allowed["definitions"] = true // root-only presence already checked separately
	for _, k := range extra {
		allowed[k] = true
	}
	return allowed
}

func rejectUnknownKeys(obj *value.Object, allowed map[string]bool, path jsonptr.Builder) error {
	for _, key := range obj.Keys() {
		if !allowed[key] {
			return newCompileError(ErrKindUnknownFormKey, path.Push(key).String(), "unknown key \""+key+"\"")
		}
	}
	return nil
}

func compileEmpty(obj *value.Object, isRoot bool, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys(), path); err != nil {
		return nil, err
	}
	return &Node{kind: KindEmpty}, nil
}

func compileRef(obj *value.Object, ctx *compileCtx, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("ref"), path); err != nil {
		return nil, err
	}
	refVal := obj.Get("ref")
	name, ok := refVal.String()
	if !ok {
		return nil, newCompileError(ErrKindBadSchemaType, path.Push("ref").String(), "ref must be a string")
	}
	if !ctx.defNames[name] {
		return nil, newCompileError(ErrKindRefNotFound, path.Push("ref").String(), "ref to undefined definition \""+name+"\"")
	}
	return &Node{kind: KindRef, refName: name}, nil
}

func compileType(obj *value.Object, isRoot bool, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("type"), path); err != nil {
		return nil, err
	}
	typeVal := obj.Get("type")
	s, ok := typeVal.String()
	if !ok || !validPrimitiveTypes[PrimitiveType(s)] {
		return nil, newCompileError(ErrKindBadPrimitiveKeyword, path.Push("type").String(), "unrecognized primitive keyword")
	}
	return &Node{kind: KindType, typeKeyword: PrimitiveType(s)}, nil
}

func compileEnum(obj *value.Object, isRoot bool, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("enum"), path); err != nil {
		return nil, err
	}
	enumVal := obj.Get("enum")
	arr, ok := enumVal.Array()
	if !ok {
		return nil, newCompileError(ErrKindBadSchemaType, path.Push("enum").String(), "enum must be an array")
	}
	if len(arr) == 0 {
		return nil, newCompileError(ErrKindEmptyEnum, path.Push("enum").String(), "enum must not be empty")
	}
	values := make([]string, 0, len(arr))
	set := make(map[string]struct{}, len(arr))
	for _, item := range arr {
		s, ok := item.String()
		if !ok {
			return nil, newCompileError(ErrKindBadSchemaType, path.Push("enum").String(), "enum values must be strings")
		}
		if _, dup := set[s]; dup {
			return nil, newCompileError(ErrKindDuplicateEnum, path.Push("enum").String(), "enum contains repeated value \""+s+"\"")
		}
		set[s] = struct{}{}
		values = append(values, s)
	}
	return &Node{kind: KindEnum, enumValues: values, enumSet: set}, nil
}

func compileElements(obj *value.Object, isRoot bool, ctx *compileCtx, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("elements"), path); err != nil {
		return nil, err
	}
	child, err := compileForm(obj.Get("elements"), false, ctx, path.Push("elements"))
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindElements, element: child}, nil
}

func compileProperties(obj *value.Object, isRoot bool, ctx *compileCtx, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("properties", "optionalProperties", "additionalProperties"), path); err != nil {
		return nil, err
	}

	required := NewOrderedNodeMap()
	if reqVal := obj.Get("properties"); !value.IsMissing(reqVal) {
		reqObj, ok := reqVal.Object()
		if !ok {
			return nil, newCompileError(ErrKindBadSchemaType, path.Push("properties").String(), "properties must be an object")
		}
		for _, m := range reqObj.Members() {
			child, err := compileForm(m.Value, false, ctx, path.Push("properties").Push(m.Key))
			if err != nil {
				return nil, err
			}
			required.Set(m.Key, child)
		}
	}

	optional := NewOrderedNodeMap()
	if optVal := obj.Get("optionalProperties"); !value.IsMissing(optVal) {
		optObj, ok := optVal.Object()
		if !ok {
			return nil, newCompileError(ErrKindBadSchemaType, path.Push("optionalProperties").String(), "optionalProperties must be an object")
		}
		for _, m := range optObj.Members() {
			if required.Has(m.Key) {
				return nil, newCompileError(ErrKindOverlappingRequiredOptional, path.Push("optionalProperties").Push(m.Key).String(), "\""+m.Key+"\" is both required and optional")
			}
			child, err := compileForm(m.Value, false, ctx, path.Push("optionalProperties").Push(m.Key))
			if err != nil {
				return nil, err
			}
			optional.Set(m.Key, child)
		}
	}

	additional := false
	if addVal := obj.Get("additionalProperties"); !value.IsMissing(addVal) {
		b, ok := addVal.Bool()
		if !ok {
			return nil, newCompileError(ErrKindBadSchemaType, path.Push("additionalProperties").String(), "additionalProperties must be a boolean")
		}
		additional = b
	}

	return &Node{kind: KindProperties, required: required, optional: optional, additional: additional}, nil
}

func compileValues(obj *value.Object, isRoot bool, ctx *compileCtx, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("values"), path); err != nil {
		return nil, err
	}
	child, err := compileForm(obj.Get("values"), false, ctx, path.Push("values"))
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindValues, valuesElem: child}, nil
}

func compileDiscriminator(obj *value.Object, isRoot bool, ctx *compileCtx, path jsonptr.Builder) (*Node, error) {
	if err := rejectUnknownKeys(obj, allowedKeys("discriminator", "mapping"), path); err != nil {
		return nil, err
	}

	tagVal := obj.Get("discriminator")
	tag, ok := tagVal.String()
	if !ok {
		return nil, newCompileError(ErrKindBadSchemaType, path.Push("discriminator").String(), "discriminator must be a string")
	}

	mappingVal := obj.Get("mapping")
	mappingObj, ok := mappingVal.Object()
	if !ok {
		return nil, newCompileError(ErrKindBadSchemaType, path.Push("mapping").String(), "mapping must be an object")
	}

	mapping := NewOrderedNodeMap()
	for _, m := range mappingObj.Members() {
		variantPath := path.Push("mapping").Push(m.Key)

		variantObj, ok := m.Value.Object()
		if !ok {
			return nil, newCompileError(ErrKindBadSchemaType, variantPath.String(), "mapping value must be a JSON object")
		}
		if nv := variantObj.Get("nullable"); !value.IsMissing(nv) {
			if b, ok := nv.Bool(); ok && b {
				return nil, newCompileError(ErrKindDiscriminatorMappingNullable, variantPath.String(), "mapping value must not be nullable")
			}
		}

		child, err := compileForm(m.Value, false, ctx, variantPath)
		if err != nil {
			return nil, err
		}
		if child.kind != KindProperties {
			return nil, newCompileError(ErrKindDiscriminatorMappingNotProperties, variantPath.String(), "mapping value must be of the properties form")
		}
		if child.required.Has(tag) || child.optional.Has(tag) {
			return nil, newCompileError(ErrKindDiscriminatorRedefinesTag, variantPath.String(), "mapping value redefines discriminator tag \""+tag+"\"")
		}
		mapping.Set(m.Key, child)
	}

	return &Node{kind: KindDiscriminator, tag: tag, mapping: mapping}, nil
}

func applyNullable(obj *value.Object, node *Node, path jsonptr.Builder) (*Node, error) {
	nv := obj.Get("nullable")
	if value.IsMissing(nv) {
		return node, nil
	}
	b, ok := nv.Bool()
	if !ok {
		return nil, newCompileError(ErrKindNonBooleanNullable, path.Push("nullable").String(), "nullable must be a literal boolean")
	}
	if !b {
		return node, nil
	}
	return &Node{kind: KindNullable, inner: node}, nil
}
