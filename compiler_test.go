package jtd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtdgo/jtd"
	"github.com/jtdgo/jtd/value"
)

func compileStr(t *testing.T, schema string) (*jtd.Root, error) {
	t.Helper()
	v, err := value.Parse([]byte(schema))
	require.NoError(t, err)
	return jtd.Compile(v)
}

func TestCompileEmptySchema(t *testing.T) {
	root, err := compileStr(t, `{}`)
	require.NoError(t, err)
	assert.Equal(t, jtd.KindEmpty, root.Top().Kind())
}

func TestCompileFormExclusivity(t *testing.T) {
	cases := []string{
		`{"type":"string","enum":["a"]}`,
		`{"ref":"x","type":"string","definitions":{"x":{}}}`,
		`{"elements":{},"values":{}}`,
		`{"properties":{},"enum":["a"]}`,
	}
	for _, schema := range cases {
		_, err := compileStr(t, schema)
		require.Error(t, err, schema)
		assert.ErrorIs(t, err, jtd.ErrMultipleForms, schema)
	}
}

func TestCompileRefMustExist(t *testing.T) {
	_, err := compileStr(t, `{"ref":"nope"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrRefNotFound)
}

func TestCompileForwardRefSucceeds(t *testing.T) {
	root, err := compileStr(t, `{
		"definitions": {"a": {"ref": "b"}, "b": {"type": "string"}},
		"ref": "a"
	}`)
	require.NoError(t, err)
	assert.Equal(t, jtd.KindRef, root.Top().Kind())
	assert.True(t, root.Definitions().Has("a"))
	assert.True(t, root.Definitions().Has("b"))
}

func TestCompileNestedDefinitionsRejected(t *testing.T) {
	_, err := compileStr(t, `{"elements":{"definitions":{"x":{}}}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrNestedDefinitions)
}

func TestCompileBadPrimitiveKeyword(t *testing.T) {
	_, err := compileStr(t, `{"type":"wat"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrBadPrimitiveKeyword)
}

func TestCompileEmptyEnum(t *testing.T) {
	_, err := compileStr(t, `{"enum":[]}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrEmptyEnum)
}

func TestCompileDuplicateEnum(t *testing.T) {
	_, err := compileStr(t, `{"enum":["a","a"]}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrDuplicateEnum)
}

func TestCompileOverlappingRequiredOptional(t *testing.T) {
	_, err := compileStr(t, `{"properties":{"a":{}},"optionalProperties":{"a":{}}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrOverlappingRequiredOptional)
}

func TestCompileDiscriminatorMappingMustBeProperties(t *testing.T) {
	_, err := compileStr(t, `{"discriminator":"kind","mapping":{"cat":{"type":"string"}}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrDiscriminatorMappingNotProps)
}

func TestCompileDiscriminatorMappingNullableRejected(t *testing.T) {
	_, err := compileStr(t, `{"discriminator":"kind","mapping":{"cat":{"properties":{},"nullable":true}}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrDiscriminatorMappingNullable)
}

func TestCompileDiscriminatorRedefinesTag(t *testing.T) {
	_, err := compileStr(t, `{"discriminator":"kind","mapping":{"cat":{"properties":{"kind":{"type":"string"}}}}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrDiscriminatorRedefinesTag)
}

func TestCompileMappingWithoutDiscriminator(t *testing.T) {
	_, err := compileStr(t, `{"mapping":{"cat":{"properties":{}}}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrMappingWithoutDiscriminator)

	_, err = compileStr(t, `{"discriminator":"kind"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrMappingWithoutDiscriminator)
}

func TestCompileNonBooleanNullable(t *testing.T) {
	_, err := compileStr(t, `{"type":"string","nullable":"yes"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrNonBooleanNullable)
}

func TestCompileRootNotObject(t *testing.T) {
	_, err := compileStr(t, `42`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrBadSchemaType)
}

func TestCompileUnknownKeyOnEmptyForm(t *testing.T) {
	_, err := compileStr(t, `{"additionalProperties":true}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, jtd.ErrUnknownFormKey)
}

func TestNodeFormLooksThroughNullable(t *testing.T) {
	root, err := compileStr(t, `{"type":"string","nullable":true}`)
	require.NoError(t, err)
	assert.Equal(t, jtd.KindNullable, root.Top().Kind())
	assert.Equal(t, jtd.FormType, root.Top().Form())
}

func TestNodeFormPerVariant(t *testing.T) {
	cases := []struct {
		schema string
		want   jtd.Form
	}{
		{`{}`, jtd.FormEmpty},
		{`{"type":"string"}`, jtd.FormType},
		{`{"enum":["a"]}`, jtd.FormEnum},
		{`{"elements":{}}`, jtd.FormElements},
		{`{"properties":{}}`, jtd.FormProperties},
		{`{"values":{}}`, jtd.FormValues},
		{`{"discriminator":"k","mapping":{"a":{"properties":{}}}}`, jtd.FormDiscriminator},
		{`{"definitions":{"x":{}},"ref":"x"}`, jtd.FormRef},
	}
	for _, c := range cases {
		root, err := compileStr(t, c.schema)
		require.NoError(t, err, c.schema)
		assert.Equal(t, c.want, root.Top().Form(), c.schema)
	}
}

func TestCompileErrorHasSchemaPath(t *testing.T) {
	_, err := compileStr(t, `{"properties":{"a":{"enum":[]}}}`)
	require.Error(t, err)
	var cerr *jtd.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "/properties/a/enum", cerr.Path())
}
