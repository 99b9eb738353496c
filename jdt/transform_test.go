package jdt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtdgo/jtd/jdt"
	"github.com/jtdgo/jtd/value"
)

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestTransformDefaultMerge(t *testing.T) {
	source := mustParse(t, `{"Settings":{"A":1,"B":2}}`)
	transform := mustParse(t, `{"Settings":{"@jdt.merge":{"A":10,"C":3}}}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	settings, ok := mustGetObject(t, result, "Settings")
	require.True(t, ok)
	assertNumberKey(t, settings, "A", 10)
	assertNumberKey(t, settings, "B", 2)
	assertNumberKey(t, settings, "C", 3)
}

func TestTransformRenameAndRemove(t *testing.T) {
	source := mustParse(t, `{"A":1,"B":2,"C":3}`)
	transform := mustParse(t, `{"@jdt.rename":{"A":"Astar"},"@jdt.remove":"B"}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	obj, ok := result.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"Astar", "C"}, obj.Keys())
	assertNumberKey(t, obj, "Astar", 1)
	assertNumberKey(t, obj, "C", 3)
}

func TestTransformRemoveTrueNullsNode(t *testing.T) {
	source := mustParse(t, `{"A":1}`)
	transform := mustParse(t, `{"@jdt.remove":true}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)
	assert.True(t, result.IsNull())
}

func TestTransformMergeArrayConcatenates(t *testing.T) {
	source := mustParse(t, `{"tags":["a","b"]}`)
	transform := mustParse(t, `{"tags":["c","d"]}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	arr, ok := mustGetArray(t, result, "tags")
	require.True(t, ok)
	require.Len(t, arr, 4)
}

func TestTransformReplaceWholesale(t *testing.T) {
	source := mustParse(t, `{"A":1,"B":2}`)
	transform := mustParse(t, `{"@jdt.replace":{"Z":9}}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	obj, ok := result.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"Z"}, obj.Keys())
}

func TestTransformDoubleBracketForcesArrayLiteral(t *testing.T) {
	source := mustParse(t, `{"A":{"x":1}}`)
	transform := mustParse(t, `{"A":{"@jdt.merge":[["lit1","lit2"]]}}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	arr, ok := mustGetArray(t, result, "A")
	require.True(t, ok)
	require.Len(t, arr, 2)
	s, ok := arr[0].String()
	require.True(t, ok)
	assert.Equal(t, "lit1", s)
}

func TestTransformUnknownDirectiveIsError(t *testing.T) {
	source := mustParse(t, `{}`)
	transform := mustParse(t, `{"@jdt.bogus":true}`)

	_, err := jdt.Transform(source, transform)
	require.Error(t, err)
	var terr *jdt.TransformError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, jdt.ErrKindUnknownDirective, terr.Kind)
}

func TestTransformPathBearingRenameIsRejected(t *testing.T) {
	source := mustParse(t, `{"A":1}`)
	transform := mustParse(t, `{"@jdt.rename":{"@jdt.path":"A","@jdt.value":"Astar"}}`)

	_, err := jdt.Transform(source, transform)
	require.Error(t, err)
	assert.ErrorIs(t, err, jdt.ErrUnsupportedPathRename)
}

func TestTransformPathBearingMerge(t *testing.T) {
	source := mustParse(t, `{"a":{"b":{"x":1}}}`)
	transform := mustParse(t, `{"a":{"@jdt.merge":{"@jdt.path":"b","@jdt.value":{"y":2}}}}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	a, ok := mustGetObject(t, result, "a")
	require.True(t, ok)
	b, ok := objGetObject(a, "b")
	require.True(t, ok)
	assertNumberKey(t, b, "x", 1)
	assertNumberKey(t, b, "y", 2)
}

func TestTransformPathBearingReplace(t *testing.T) {
	source := mustParse(t, `{"a":{"b":{"x":1},"c":2}}`)
	transform := mustParse(t, `{"a":{"@jdt.replace":{"@jdt.path":"b","@jdt.value":{"y":9}}}}`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)

	a, ok := mustGetObject(t, result, "a")
	require.True(t, ok)
	b, ok := objGetObject(a, "b")
	require.True(t, ok)
	assert.Equal(t, []string{"y"}, b.Keys())
	assertNumberKey(t, b, "y", 9)
	assertNumberKey(t, a, "c", 2)
}

func TestTransformPathBearingReplaceRequiresValue(t *testing.T) {
	source := mustParse(t, `{"a":{"b":1}}`)
	transform := mustParse(t, `{"a":{"@jdt.replace":{"@jdt.path":"b"}}}`)

	_, err := jdt.Transform(source, transform)
	require.Error(t, err)
	var terr *jdt.TransformError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, jdt.ErrKindInvalidReplace, terr.Kind)
}

func TestTransformNonObjectTransformIsDirectReplacement(t *testing.T) {
	source := mustParse(t, `{"a":1}`)
	transform := mustParse(t, `42`)

	result, err := jdt.Transform(source, transform)
	require.NoError(t, err)
	n, ok := result.Number()
	require.True(t, ok)
	assert.Equal(t, float64(42), n)
}

func mustGetObject(t *testing.T, v value.Value, key string) (*value.Object, bool) {
	t.Helper()
	obj, ok := v.Object()
	require.True(t, ok)
	return objGetObject(obj, key)
}

func objGetObject(obj *value.Object, key string) (*value.Object, bool) {
	return obj.Get(key).Object()
}

func mustGetArray(t *testing.T, v value.Value, key string) ([]value.Value, bool) {
	t.Helper()
	obj, ok := v.Object()
	require.True(t, ok)
	return obj.Get(key).Array()
}

func assertNumberKey(t *testing.T, obj *value.Object, key string, want float64) {
	t.Helper()
	n, ok := obj.Get(key).Number()
	require.True(t, ok, "key %q missing or not a number", key)
	assert.Equal(t, want, n)
}
