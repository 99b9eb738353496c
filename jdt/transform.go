// Package jdt implements the JDT document-transform engine: a small
// directive language (@jdt.rename / @jdt.remove / @jdt.merge /
// @jdt.replace) that mirrors a source JSON document and produces a new
// one, sharing the path-addressing discipline of the schema validator in
// the parent package.
package jdt

import (
	"github.com/jtdgo/jtd/internal/jsonptr"
	"github.com/jtdgo/jtd/value"
)

const directivePrefix = "@jdt."

const (
	keyRename  = "@jdt.rename"
	keyRemove  = "@jdt.remove"
	keyMerge   = "@jdt.merge"
	keyReplace = "@jdt.replace"
	keyPath    = "@jdt.path"
	keyValue   = "@jdt.value"
)

var knownDirectiveKeys = map[string]bool{
	keyRename:  true,
	keyRemove:  true,
	keyMerge:   true,
	keyReplace: true,
	keyPath:    true,
	keyValue:   true,
}

// Settings configures Transform.
type Settings struct {
	resolver Resolver
}

// Option configures a Transform call.
type Option func(*Settings)

// WithPathResolver injects a path resolver for @jdt.path-targeted
// directives. Transform uses DefaultResolver when none is supplied.
func WithPathResolver(r Resolver) Option {
	return func(s *Settings) { s.resolver = r }
}

// Transform mirrors source under the directives in transform and returns
// the resulting document (spec §4.4).
func Transform(source, transform value.Value, opts ...Option) (value.Value, error) {
	settings := Settings{resolver: DefaultResolver}
	for _, opt := range opts {
		opt(&settings)
	}
	eng := &engine{settings: &settings}
	return eng.node(source, transform, jsonptr.Builder{})
}

type engine struct {
	settings *Settings
}

// node evaluates one transform subtree against its corresponding source
// subtree, implementing the directive dispatch order and default merge
// semantics of spec §4.4.
func (e *engine) node(source, transform value.Value, path jsonptr.Builder) (value.Value, error) {
	tObj, ok := transform.Object()
	if !ok {
		// "Transform is not an object -> direct replacement."
		return transform, nil
	}

	directiveKeys, plainMembers, err := splitDirectives(tObj, path)
	if err != nil {
		return value.Null, err
	}

	if len(directiveKeys) == 0 {
		result, err := e.defaultMerge(source, tObj, path)
		if err != nil {
			return value.Null, err
		}
		return result, nil
	}

	result := source

	if rv, ok := directiveKeys[keyRename]; ok {
		result, err = e.applyRename(result, rv, path.Push(keyRename))
		if err != nil {
			return value.Null, err
		}
	}
	if rv, ok := directiveKeys[keyRemove]; ok {
		result, err = e.applyRemove(result, rv, path.Push(keyRemove))
		if err != nil {
			return value.Null, err
		}
	}
	if mv, ok := directiveKeys[keyMerge]; ok {
		result, err = e.applyMerge(result, mv, path.Push(keyMerge))
		if err != nil {
			return value.Null, err
		}
	}
	if rv, ok := directiveKeys[keyReplace]; ok {
		result, err = e.applyReplace(result, rv, path.Push(keyReplace))
		if err != nil {
			return value.Null, err
		}
	}

	if len(plainMembers) > 0 {
		resultObj, ok := result.Object()
		if !ok {
			// Sibling keys beside a directive only make sense when the
			// directive left us with an object to keep merging into.
			return result, nil
		}
		merged := cloneObject(resultObj)
		for _, m := range plainMembers {
			sv := resultObj.Get(m.Key)
			if value.IsMissing(sv) {
				sv = value.Null
			}
			cv, err := e.node(sv, m.Value, path.Push(m.Key))
			if err != nil {
				return value.Null, err
			}
			merged.Set(m.Key, cv)
		}
		return value.NewObject(merged), nil
	}

	return result, nil
}

// splitDirectives partitions an object's members into the four top-level
// directives present (if any) and the remaining plain keys, rejecting any
// "@jdt."-prefixed key outside the closed vocabulary (spec §6).
func splitDirectives(obj *value.Object, path jsonptr.Builder) (map[string]value.Value, []value.Member, error) {
	directives := map[string]value.Value{}
	var plain []value.Member

	for _, m := range obj.Members() {
		if !isDirectiveKey(m.Key) {
			plain = append(plain, m)
			continue
		}
		if !knownDirectiveKeys[m.Key] {
			return nil, nil, newTransformError(ErrKindUnknownDirective, path.Push(m.Key).String(), "unrecognized directive \""+m.Key+"\"")
		}
		switch m.Key {
		case keyRename, keyRemove, keyMerge, keyReplace:
			directives[m.Key] = m.Value
		default:
			// @jdt.path / @jdt.value appearing as top-level siblings of a
			// transform object (rather than nested inside a directive's
			// own value) are out of place.
			return nil, nil, newTransformError(ErrKindInvalidPath, path.Push(m.Key).String(), "\""+m.Key+"\" may only appear inside a directive value")
		}
	}

	return directives, plain, nil
}

func isDirectiveKey(key string) bool {
	return len(key) >= len(directivePrefix) && key[:len(directivePrefix)] == directivePrefix
}

// defaultMerge implements spec §4.4's no-directive semantics: deep merge
// when both sides are objects, otherwise wholesale replacement already
// handled by the caller before reaching here (tObj is, by construction,
// already known to be an object).
func (e *engine) defaultMerge(source value.Value, tObj *value.Object, path jsonptr.Builder) (value.Value, error) {
	sObj, ok := source.Object()
	if !ok {
		// "Source primitive, transform an object -> the transform value
		// replaces wholesale." Still evaluate nested directives within the
		// replacement, against an absent (null) source for each key.
		return e.mergeInto(value.NewOrderedObject(), tObj, path)
	}
	return e.mergeInto(sObj, tObj, path)
}

func (e *engine) mergeInto(sObj *value.Object, tObj *value.Object, path jsonptr.Builder) (value.Value, error) {
	result := cloneObject(sObj)
	for _, m := range tObj.Members() {
		sv := sObj.Get(m.Key)
		childPath := path.Push(m.Key)

		if !value.IsMissing(sv) {
			if svArr, svIsArr := sv.Array(); svIsArr {
				if tvArr, tvIsArr := m.Value.Array(); tvIsArr {
					result.Set(m.Key, value.NewArray(append(append([]value.Value{}, svArr...), tvArr...)))
					continue
				}
			}
		} else {
			sv = value.Null
		}

		cv, err := e.node(sv, m.Value, childPath)
		if err != nil {
			return value.Null, err
		}
		result.Set(m.Key, cv)
	}
	return value.NewObject(result), nil
}

func cloneObject(o *value.Object) *value.Object {
	out := value.NewOrderedObject()
	for _, m := range o.Members() {
		out.Set(m.Key, m.Value)
	}
	return out
}
