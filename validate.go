package jtd

import (
	"context"
	"strconv"
	"time"

	"github.com/jtdgo/jtd/internal/jsonptr"
	"github.com/jtdgo/jtd/value"
)

// ValidateError is one standardized JTD error indicator: a pair of RFC 6901
// JSON Pointers naming the offending instance location and schema keyword.
type ValidateError struct {
	InstancePath string
	SchemaPath   string
}

// Settings configures Validate. The zero Settings disables its one limit,
// MaxErrors, following the teacher's ValidateSettings/ValidateOption pattern.
type Settings struct {
	// MaxErrors stops accumulating new errors once this many have been
	// recorded; validation keeps running so the work stack still drains,
	// but further failures are silently dropped. Zero disables the limit.
	MaxErrors int
}

// Option configures a Validate call.
type Option func(*Settings)

// WithMaxErrors caps the number of errors Validate will accumulate.
func WithMaxErrors(n int) Option {
	return func(s *Settings) { s.MaxErrors = n }
}

// frame is one unit of pending work on the validator's explicit stack
// (spec §4.3): a node to check, the sub-instance to check it against, the
// two accumulated paths, and the discriminator tag in scope, if any.
type frame struct {
	node            *Node
	instance        value.Value
	instancePath    jsonptr.Builder
	schemaPath      jsonptr.Builder
	discriminatorOf string
	hasDiscrim      bool
}

// Validate walks root's AST against instance, accumulating standardized
// error indicators (spec §4.3). It never recurses in Go and never
// short-circuits: every reachable frame is checked even after errors have
// been recorded, unless MaxErrors caps the accumulation.
func Validate(root *Root, instance value.Value, opts ...Option) []ValidateError {
	return ValidateContext(context.Background(), root, instance, opts...)
}

// ValidateContext is Validate with a cancellation point checked at each
// frame pop, per spec §5's note that hosts may add cooperative cancellation
// via periodic stack-size checks. On cancellation the partial error list
// accumulated so far is returned; no frames are unwound specially, because
// none of them own anything but their own stack-local paths.
func ValidateContext(ctx context.Context, root *Root, instance value.Value, opts ...Option) []ValidateError {
	var settings Settings
	for _, opt := range opts {
		opt(&settings)
	}

	errs := make([]ValidateError, 0)
	stack := []frame{{node: root.top, instance: instance}}

outer:
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return errs
		default:
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Nullable and Ref are transparent re-dispatches: replace the
		// current frame's node in place rather than recursing, per spec
		// §9 ("resist the temptation to reintroduce host recursion in the
		// Ref or Nullable cases"). A schema can only ref into a cycle
		// through a node that descends into the document elsewhere, so
		// this inner loop always terminates even for recursive schemas.
		for {
			switch f.node.kind {
			case KindNullable:
				if f.instance.IsNull() {
					continue outer
				}
				f.node = f.node.inner
			case KindRef:
				f.node = root.definitions.Get(f.node.refName)
			default:
				goto resolved
			}
		}
	resolved:

		stack, errs = step(root, f, stack, errs, &settings)
	}

	return errs
}

func appendErr(errs []ValidateError, settings *Settings, instancePath, schemaPath jsonptr.Builder) []ValidateError {
	if settings.MaxErrors > 0 && len(errs) >= settings.MaxErrors {
		return errs
	}
	return append(errs, ValidateError{
		InstancePath: instancePath.String(),
		SchemaPath:   schemaPath.String(),
	})
}

// step executes one frame, returning the (possibly grown) stack and error
// list. Pushing children happens here, LIFO, so the overall loop in
// ValidateContext never recurses.
func step(root *Root, f frame, stack []frame, errs []ValidateError, settings *Settings) ([]frame, []ValidateError) {
	node := f.node

	switch node.kind {
	case KindEmpty:
		return stack, errs

	case KindType:
		return stepType(node, f, stack, errs, settings)

	case KindEnum:
		s, ok := f.instance.String()
		if !ok {
			return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("enum"))
		}
		if _, member := node.enumSet[s]; !member {
			return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("enum"))
		}
		return stack, errs

	case KindElements:
		arr, ok := f.instance.Array()
		if !ok {
			return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("elements"))
		}
		schemaPath := f.schemaPath.Push("elements")
		for i := len(arr) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:         node.element,
				instance:     arr[i],
				instancePath: f.instancePath.Push(strconv.Itoa(i)),
				schemaPath:   schemaPath,
			})
		}
		return stack, errs

	case KindProperties:
		return stepProperties(node, f, stack, errs, settings)

	case KindValues:
		obj, ok := f.instance.Object()
		if !ok {
			return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("values"))
		}
		schemaPath := f.schemaPath.Push("values")
		members := obj.Members()
		for i := len(members) - 1; i >= 0; i-- {
			m := members[i]
			stack = append(stack, frame{
				node:         node.valuesElem,
				instance:     m.Value,
				instancePath: f.instancePath.Push(m.Key),
				schemaPath:   schemaPath,
			})
		}
		return stack, errs

	case KindDiscriminator:
		return stepDiscriminator(node, f, stack, errs, settings)
	}

	return stack, errs
}

func stepType(node *Node, f frame, stack []frame, errs []ValidateError, settings *Settings) ([]frame, []ValidateError) {
	fail := func() ([]frame, []ValidateError) {
		return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("type"))
	}

	switch node.typeKeyword {
	case TypeBoolean:
		if _, ok := f.instance.Bool(); !ok {
			return fail()
		}
	case TypeString:
		if _, ok := f.instance.String(); !ok {
			return fail()
		}
	case TypeTimestamp:
		s, ok := f.instance.String()
		if !ok || !isValidTimestamp(s) {
			return fail()
		}
	case TypeFloat32, TypeFloat64:
		if _, ok := f.instance.Number(); !ok {
			return fail()
		}
	default:
		n, ok := f.instance.Number()
		if !ok {
			return fail()
		}
		bounds, isIntType := intRanges[node.typeKeyword]
		if !isIntType {
			return fail()
		}
		if !value.IsIntegral(n) || n < bounds[0] || n > bounds[1] {
			return fail()
		}
	}
	return stack, errs
}

// isValidTimestamp checks the RFC 3339 date-time production, normalizing a
// leap-second value of 60 to 59 before handing off to time.Parse, which
// itself does not accept leap seconds.
func isValidTimestamp(s string) bool {
	const leapSentinel = ":60"
	candidate := s
	if idx := lastSecondsField(s); idx >= 0 && s[idx:idx+3] == leapSentinel {
		candidate = s[:idx] + ":59" + s[idx+3:]
	}
	_, err := time.Parse(time.RFC3339, candidate)
	return err == nil
}

// lastSecondsField returns the index of the ":SS" seconds field within an
// RFC 3339 timestamp's time portion, or -1 if the string is too short to
// contain one. It only needs to be precise enough to locate a literal "60"
// in the seconds position; time.Parse rejects anything else.
func lastSecondsField(s string) int {
	// RFC3339 time portion looks like "...THH:MM:SS[.fff](Z|+HH:MM)".
	tIdx := -1
	for i := 0; i < len(s); i++ {
		if s[i] == 'T' || s[i] == 't' {
			tIdx = i
			break
		}
	}
	if tIdx < 0 || tIdx+9 > len(s) {
		return -1
	}
	secIdx := tIdx + 6
	if secIdx+2 < len(s) && s[secIdx] == ':' {
		return secIdx
	}
	return -1
}

func stepProperties(node *Node, f frame, stack []frame, errs []ValidateError, settings *Settings) ([]frame, []ValidateError) {
	obj, ok := f.instance.Object()
	if !ok {
		keyword := "optionalProperties"
		if node.required.Len() > 0 {
			keyword = "properties"
		}
		return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push(keyword))
	}

	// Required properties: missing keys are errors; present keys push a
	// child frame. The compiler guarantees a discriminator's tag name never
	// appears here (ErrKindDiscriminatorRedefinesTag), so no exemption is
	// needed in this loop.
	for _, entry := range node.required.Entries() {
		schemaPath := f.schemaPath.Push("properties").Push(entry.Name)
		sub := obj.Get(entry.Name)
		if value.IsMissing(sub) {
			errs = appendErr(errs, settings, f.instancePath, schemaPath)
			continue
		}
		stack = append(stack, frame{
			node:         entry.Node,
			instance:     sub,
			instancePath: f.instancePath.Push(entry.Name),
			schemaPath:   schemaPath,
		})
	}

	for _, entry := range node.optional.Entries() {
		sub := obj.Get(entry.Name)
		if value.IsMissing(sub) {
			continue
		}
		stack = append(stack, frame{
			node:         entry.Node,
			instance:     sub,
			instancePath: f.instancePath.Push(entry.Name),
			schemaPath:   f.schemaPath.Push("optionalProperties").Push(entry.Name),
		})
	}

	if !node.additional {
		for _, m := range obj.Members() {
			if f.hasDiscrim && m.Key == f.discriminatorOf {
				continue
			}
			if node.required.Has(m.Key) || node.optional.Has(m.Key) {
				continue
			}
			errs = appendErr(errs, settings, f.instancePath.Push(m.Key), f.schemaPath)
		}
	}

	return stack, errs
}

func stepDiscriminator(node *Node, f frame, stack []frame, errs []ValidateError, settings *Settings) ([]frame, []ValidateError) {
	obj, ok := f.instance.Object()
	if !ok {
		return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("discriminator"))
	}

	tagVal := obj.Get(node.tag)
	if value.IsMissing(tagVal) {
		return stack, appendErr(errs, settings, f.instancePath, f.schemaPath.Push("discriminator"))
	}

	tagStr, ok := tagVal.String()
	if !ok {
		return stack, appendErr(errs, settings, f.instancePath.Push(node.tag), f.schemaPath.Push("discriminator"))
	}

	variant := node.mapping.Get(tagStr)
	if variant == nil {
		return stack, appendErr(errs, settings, f.instancePath.Push(node.tag), f.schemaPath.Push("mapping"))
	}

	stack = append(stack, frame{
		node:            variant,
		instance:        f.instance,
		instancePath:    f.instancePath,
		schemaPath:      f.schemaPath.Push("mapping").Push(tagStr),
		discriminatorOf: node.tag,
		hasDiscrim:      true,
	})
	return stack, errs
}
