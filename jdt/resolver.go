package jdt

import (
	"strings"

	"github.com/jtdgo/jtd/value"
)

// PathFunc is a compiled path expression: given a JSON value, it returns
// every matching sub-value. It is a pure function (spec §9).
type PathFunc func(value.Value) []value.Value

// Resolver compiles a path expression string into a PathFunc. Spec §4.4
// treats the real query language (e.g. JSONPath) as an injectable external
// collaborator; Transform ships a minimal default so path-bearing
// directives work out of the box for the common case of a dotted property
// path, without taking a dependency on a full JSONPath engine.
type Resolver func(path string) (PathFunc, error)

// DefaultResolver compiles a dot-separated sequence of object keys (e.g.
// "a.b.c") into a PathFunc that walks that exact key path from the root
// and returns either the single node found there or no matches. It does
// not support array indices, wildcards, or predicates; callers that need
// those inject their own Resolver (e.g. backed by a real JSONPath engine)
// via WithPathResolver.
func DefaultResolver(path string) (PathFunc, error) {
	if path == "" {
		return nil, newTransformError(ErrKindInvalidPath, "", "path must not be empty")
	}
	segments := strings.Split(path, ".")
	return func(root value.Value) []value.Value {
		cur := root
		for _, seg := range segments {
			obj, ok := cur.Object()
			if !ok {
				return nil
			}
			next := obj.Get(seg)
			if value.IsMissing(next) {
				return nil
			}
			cur = next
		}
		return []value.Value{cur}
	}, nil
}
