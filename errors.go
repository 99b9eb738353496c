package jtd

import (
	"fmt"

	"github.com/pkg/errors"
)

// CompileErrorKind is one of the closed set of reasons a schema can fail to
// compile (spec §7).
type CompileErrorKind int

const (
	ErrKindMultipleForms CompileErrorKind = iota
	ErrKindUnknownFormKey
	ErrKindBadPrimitiveKeyword
	ErrKindEmptyEnum
	ErrKindDuplicateEnum
	ErrKindOverlappingRequiredOptional
	ErrKindRefNotFound
	ErrKindNestedDefinitions
	ErrKindDiscriminatorMappingNotProperties
	ErrKindDiscriminatorMappingNullable
	ErrKindDiscriminatorRedefinesTag
	ErrKindNonBooleanNullable
	ErrKindMappingWithoutDiscriminator
	ErrKindBadSchemaType
)

func (k CompileErrorKind) String() string {
	switch k {
	case ErrKindMultipleForms:
		return "multiple-forms"
	case ErrKindUnknownFormKey:
		return "unknown-form-key"
	case ErrKindBadPrimitiveKeyword:
		return "bad-primitive-keyword"
	case ErrKindEmptyEnum:
		return "empty-enum"
	case ErrKindDuplicateEnum:
		return "duplicate-enum"
	case ErrKindOverlappingRequiredOptional:
		return "overlapping-required-optional"
	case ErrKindRefNotFound:
		return "ref-not-found"
	case ErrKindNestedDefinitions:
		return "nested-definitions"
	case ErrKindDiscriminatorMappingNotProperties:
		return "discriminator-mapping-not-properties"
	case ErrKindDiscriminatorMappingNullable:
		return "discriminator-mapping-nullable"
	case ErrKindDiscriminatorRedefinesTag:
		return "discriminator-redefines-tag"
	case ErrKindNonBooleanNullable:
		return "non-boolean-nullable"
	case ErrKindMappingWithoutDiscriminator:
		return "mapping-without-discriminator"
	case ErrKindBadSchemaType:
		return "bad-schema-type"
	default:
		return "unknown"
	}
}

// sentinel is the base error each CompileErrorKind wraps, so callers can
// match a kind with errors.Is(err, ErrMultipleForms) the same way the
// teacher's sentinel errors (ErrInvalidForm, ErrNoSuchDefinition, ...) are
// matched, without losing the offense detail spec §4.2 requires.
type sentinel struct{ kind CompileErrorKind }

func (s sentinel) Error() string { return "jtd: " + s.kind.String() }

var (
	ErrMultipleForms                  error = sentinel{ErrKindMultipleForms}
	ErrUnknownFormKey                 error = sentinel{ErrKindUnknownFormKey}
	ErrBadPrimitiveKeyword            error = sentinel{ErrKindBadPrimitiveKeyword}
	ErrEmptyEnum                      error = sentinel{ErrKindEmptyEnum}
	ErrDuplicateEnum                  error = sentinel{ErrKindDuplicateEnum}
	ErrOverlappingRequiredOptional    error = sentinel{ErrKindOverlappingRequiredOptional}
	ErrRefNotFound                    error = sentinel{ErrKindRefNotFound}
	ErrNestedDefinitions              error = sentinel{ErrKindNestedDefinitions}
	ErrDiscriminatorMappingNotProps   error = sentinel{ErrKindDiscriminatorMappingNotProperties}
	ErrDiscriminatorMappingNullable   error = sentinel{ErrKindDiscriminatorMappingNullable}
	ErrDiscriminatorRedefinesTag      error = sentinel{ErrKindDiscriminatorRedefinesTag}
	ErrNonBooleanNullable             error = sentinel{ErrKindNonBooleanNullable}
	ErrMappingWithoutDiscriminator    error = sentinel{ErrKindMappingWithoutDiscriminator}
	ErrBadSchemaType                  error = sentinel{ErrKindBadSchemaType}
)

var sentinelByKind = map[CompileErrorKind]error{
	ErrKindMultipleForms:                     ErrMultipleForms,
	ErrKindUnknownFormKey:                    ErrUnknownFormKey,
	ErrKindBadPrimitiveKeyword:               ErrBadPrimitiveKeyword,
	ErrKindEmptyEnum:                         ErrEmptyEnum,
	ErrKindDuplicateEnum:                     ErrDuplicateEnum,
	ErrKindOverlappingRequiredOptional:       ErrOverlappingRequiredOptional,
	ErrKindRefNotFound:                       ErrRefNotFound,
	ErrKindNestedDefinitions:                 ErrNestedDefinitions,
	ErrKindDiscriminatorMappingNotProperties: ErrDiscriminatorMappingNotProps,
	ErrKindDiscriminatorMappingNullable:      ErrDiscriminatorMappingNullable,
	ErrKindDiscriminatorRedefinesTag:         ErrDiscriminatorRedefinesTag,
	ErrKindNonBooleanNullable:                ErrNonBooleanNullable,
	ErrKindMappingWithoutDiscriminator:       ErrMappingWithoutDiscriminator,
	ErrKindBadSchemaType:                     ErrBadSchemaType,
}

// CompileError is returned by Compile. It names the offense, a schema-path
// JSON Pointer to where it occurred, and wraps the matching sentinel so
// errors.Is(err, ErrMultipleForms) keeps working for callers that only
// care about the kind.
type CompileError struct {
	Kind CompileErrorKind
	path string
	err  error
}

func newCompileError(kind CompileErrorKind, path, detail string) *CompileError {
	base := sentinelByKind[kind]
	return &CompileError{
		Kind: kind,
		path: path,
		err:  errors.WithMessage(base, detail),
	}
}

// Path returns a JSON Pointer into the schema document naming where
// compilation failed.
func (e *CompileError) Path() string { return e.path }

func (e *CompileError) Error() string {
	if e.path == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s (at %s)", e.err.Error(), e.path)
}

func (e *CompileError) Unwrap() error { return e.err }
