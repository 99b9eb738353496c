package jdt

import (
	"strconv"

	"github.com/jtdgo/jtd/internal/jsonptr"
	"github.com/jtdgo/jtd/value"
)

// applyRename implements the @jdt.rename directive (spec §4.4). Path-bearing
// rename is an open question the reference implementation leaves stubbed;
// per spec §9 this implementation rejects it outright at transform time
// rather than silently passing the source through.
func (e *engine) applyRename(node, directive value.Value, path jsonptr.Builder) (value.Value, error) {
	if isPathBearingShape(directive) {
		return value.Null, newTransformError(ErrKindUnsupportedPathRename, path.String(), "@jdt.path-targeted rename is not supported")
	}

	if pairs, ok := directive.Object(); ok {
		return renamePairs(node, pairs, path)
	}

	if arr, ok := directive.Array(); ok {
		result := node
		for i, item := range arr {
			if isPathBearingShape(item) {
				return value.Null, newTransformError(ErrKindUnsupportedPathRename, path.Push(strconv.Itoa(i)).String(), "@jdt.path-targeted rename is not supported")
			}
			pairs, ok := item.Object()
			if !ok {
				return value.Null, newTransformError(ErrKindInvalidRename, path.Push(strconv.Itoa(i)).String(), "rename array elements must be objects")
			}
			var err error
			result, err = renamePairs(result, pairs, path.Push(strconv.Itoa(i)))
			if err != nil {
				return value.Null, err
			}
		}
		return result, nil
	}

	return value.Null, newTransformError(ErrKindInvalidRename, path.String(), "rename must be an object or array of objects")
}

func renamePairs(node value.Value, pairs *value.Object, path jsonptr.Builder) (value.Value, error) {
	obj, ok := node.Object()
	if !ok {
		// "Non-object source is a no-op."
		return node, nil
	}
	out := cloneObject(obj)
	for _, m := range pairs.Members() {
		newName, ok := m.Value.String()
		if !ok {
			return value.Null, newTransformError(ErrKindInvalidRename, path.Push(m.Key).String(), "rename target must be a string")
		}
		if !out.Has(m.Key) {
			continue
		}
		out = renameKeyPreservingPosition(out, m.Key, newName)
	}
	return value.NewObject(out), nil
}

// renameKeyPreservingPosition rebuilds an object with oldKey's slot
// relabeled to newKey in place, matching spec §8 scenario 6's expectation
// that "key order preserves rename-in-place where possible."
func renameKeyPreservingPosition(obj *value.Object, oldKey, newKey string) *value.Object {
	out := value.NewOrderedObject()
	for _, m := range obj.Members() {
		if m.Key == oldKey {
			out.Set(newKey, m.Value)
			continue
		}
		out.Set(m.Key, m.Value)
	}
	return out
}

// applyRemove implements the @jdt.remove directive.
func (e *engine) applyRemove(node, directive value.Value, path jsonptr.Builder) (value.Value, error) {
	if b, ok := directive.Bool(); ok {
		if b {
			return value.Null, nil
		}
		return node, nil
	}

	if s, ok := directive.String(); ok {
		return removeKey(node, s), nil
	}

	if isPathBearingShape(directive) {
		matches, err := e.resolvePathBearing(node, directive, path)
		if err != nil {
			return value.Null, err
		}
		return removeMatches(node, matches.targets), nil
	}

	if arr, ok := directive.Array(); ok {
		result := node
		for i, item := range arr {
			if s, ok := item.String(); ok {
				result = removeKey(result, s)
				continue
			}
			if isPathBearingShape(item) {
				resolved, err := e.resolvePathBearing(result, item, path.Push(strconv.Itoa(i)))
				if err != nil {
					return value.Null, err
				}
				result = removeMatches(result, resolved.targets)
				continue
			}
			return value.Null, newTransformError(ErrKindInvalidRemove, path.Push(strconv.Itoa(i)).String(), "remove array elements must be strings or path-bearing objects")
		}
		return result, nil
	}

	return value.Null, newTransformError(ErrKindInvalidRemove, path.String(), "remove must be a string, boolean, array, or path-bearing object")
}

func removeKey(node value.Value, key string) value.Value {
	obj, ok := node.Object()
	if !ok {
		return node
	}
	out := value.NewOrderedObject()
	for _, m := range obj.Members() {
		if m.Key == key {
			continue
		}
		out.Set(m.Key, m.Value)
	}
	return value.NewObject(out)
}

// removeMatches rebuilds node, dropping any object member or array element
// whose value structurally equals one of matches. See note on
// replaceMatches about identity.
func removeMatches(node value.Value, matches []value.Value) value.Value {
	if obj, ok := node.Object(); ok {
		out := value.NewOrderedObject()
		for _, m := range obj.Members() {
			if containsEqual(matches, m.Value) {
				continue
			}
			out.Set(m.Key, removeMatches(m.Value, matches))
		}
		return value.NewObject(out)
	}
	if arr, ok := node.Array(); ok {
		var out []value.Value
		for _, elem := range arr {
			if containsEqual(matches, elem) {
				continue
			}
			out = append(out, removeMatches(elem, matches))
		}
		return value.NewArray(out)
	}
	return node
}

// applyMerge implements the @jdt.merge directive.
func (e *engine) applyMerge(node, directive value.Value, path jsonptr.Builder) (value.Value, error) {
	if isPathBearingShape(directive) {
		resolved, err := e.resolvePathBearing(node, directive, path)
		if err != nil {
			return value.Null, err
		}
		if !resolved.hasValue {
			return value.Null, newTransformError(ErrKindInvalidMerge, path.String(), "path-bearing merge requires @jdt.value")
		}
		return replaceMatches(node, resolved.targets, func(target value.Value) (value.Value, error) {
			return e.mergeValue(target, resolved.value, path)
		})
	}

	return e.mergeValue(node, directive, path)
}

// mergeValue applies the non-path-targeted merge value rules: object -> deep
// merge, array -> sequential application (with the double-bracket array
// literal escape), anything else -> wholesale replacement.
func (e *engine) mergeValue(node, mergeVal value.Value, path jsonptr.Builder) (value.Value, error) {
	if mObj, ok := mergeVal.Object(); ok {
		return e.defaultMerge(node, mObj, path)
	}
	if mArr, ok := mergeVal.Array(); ok {
		if len(mArr) == 1 {
			if inner, ok := mArr[0].Array(); ok {
				return value.NewArray(inner), nil
			}
		}
		result := node
		for _, item := range mArr {
			var err error
			result, err = e.mergeValue(result, item, path)
			if err != nil {
				return value.Null, err
			}
		}
		return result, nil
	}
	return mergeVal, nil
}

// applyReplace implements the @jdt.replace directive. Like @jdt.merge and
// @jdt.remove, a path-bearing directive value replaces only the nodes the
// path resolves to, wholesale, rather than the entire node.
func (e *engine) applyReplace(node, directive value.Value, path jsonptr.Builder) (value.Value, error) {
	if isPathBearingShape(directive) {
		resolved, err := e.resolvePathBearing(node, directive, path)
		if err != nil {
			return value.Null, err
		}
		if !resolved.hasValue {
			return value.Null, newTransformError(ErrKindInvalidReplace, path.String(), "path-bearing replace requires @jdt.value")
		}
		return replaceMatches(node, resolved.targets, func(value.Value) (value.Value, error) {
			return resolved.value, nil
		})
	}
	if mArr, ok := directive.Array(); ok && len(mArr) == 1 {
		if inner, ok := mArr[0].Array(); ok {
			return value.NewArray(inner), nil
		}
	}
	if mObj, ok := directive.Object(); ok {
		return e.defaultMerge(value.Null, mObj, path)
	}
	return directive, nil
}

type pathBearingDirective struct {
	targets  []value.Value
	value    value.Value
	hasValue bool
}

func (e *engine) resolvePathBearing(node, directive value.Value, path jsonptr.Builder) (pathBearingDirective, error) {
	obj, _ := directive.Object()
	pathExprVal := obj.Get(keyPath)
	pathExpr, ok := pathExprVal.String()
	if !ok {
		return pathBearingDirective{}, newTransformError(ErrKindInvalidPath, path.String(), "@jdt.path must be a string")
	}

	resolver := e.settings.resolver
	if resolver == nil {
		resolver = DefaultResolver
	}
	fn, err := resolver(pathExpr)
	if err != nil {
		return pathBearingDirective{}, err
	}

	targets := fn(node)
	result := pathBearingDirective{targets: targets}
	if v := obj.Get(keyValue); !value.IsMissing(v) {
		result.value = v
		result.hasValue = true
	}
	return result, nil
}

// isPathBearingShape reports whether v is an object carrying @jdt.path
// (and nothing outside {@jdt.path, @jdt.value}).
func isPathBearingShape(v value.Value) bool {
	obj, ok := v.Object()
	if !ok {
		return false
	}
	if !obj.Has(keyPath) {
		return false
	}
	for _, k := range obj.Keys() {
		if k != keyPath && k != keyValue {
			return false
		}
	}
	return true
}

// replaceMatches rebuilds node, replacing any sub-value structurally equal
// to one of matches with the result of applying fn to it. Because value.
// Value is an immutable tagged union rather than a pointer-identified
// tree, matches are located by structural equality rather than true
// pointer identity (spec §9 calls for "node identity comparison"); this is
// an accepted approximation documented in DESIGN.md.
func replaceMatches(node value.Value, matches []value.Value, fn func(value.Value) (value.Value, error)) (value.Value, error) {
	if containsEqual(matches, node) {
		return fn(node)
	}
	if obj, ok := node.Object(); ok {
		out := value.NewOrderedObject()
		for _, m := range obj.Members() {
			cv, err := replaceMatches(m.Value, matches, fn)
			if err != nil {
				return value.Null, err
			}
			out.Set(m.Key, cv)
		}
		return value.NewObject(out), nil
	}
	if arr, ok := node.Array(); ok {
		out := make([]value.Value, len(arr))
		for i, elem := range arr {
			cv, err := replaceMatches(elem, matches, fn)
			if err != nil {
				return value.Null, err
			}
			out[i] = cv
		}
		return value.NewArray(out), nil
	}
	return node, nil
}

func containsEqual(haystack []value.Value, v value.Value) bool {
	for _, h := range haystack {
		if valuesEqual(h, v) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case value.KindNull:
		return true
	case value.KindBool:
		av, _ := a.Bool()
		bv, _ := b.Bool()
		return av == bv
	case value.KindNumber:
		av, _ := a.Number()
		bv, _ := b.Number()
		return av == bv
	case value.KindString:
		av, _ := a.String()
		bv, _ := b.String()
		return av == bv
	case value.KindArray:
		aArr, _ := a.Array()
		bArr, _ := b.Array()
		if len(aArr) != len(bArr) {
			return false
		}
		for i := range aArr {
			if !valuesEqual(aArr[i], bArr[i]) {
				return false
			}
		}
		return true
	case value.KindObject:
		aObj, _ := a.Object()
		bObj, _ := b.Object()
		if aObj.Len() != bObj.Len() {
			return false
		}
		for _, m := range aObj.Members() {
			bv := bObj.Get(m.Key)
			if value.IsMissing(bv) || !valuesEqual(m.Value, bv) {
				return false
			}
		}
		return true
	}
	return false
}

