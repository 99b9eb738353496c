package jdt

import "github.com/pkg/errors"

// TransformErrorKind is one of the closed set of reasons a transform can
// fail at evaluation time.
type TransformErrorKind int

const (
	ErrKindUnknownDirective TransformErrorKind = iota
	ErrKindInvalidRename
	ErrKindInvalidRemove
	ErrKindInvalidMerge
	ErrKindInvalidReplace
	ErrKindInvalidPath
	ErrKindUnsupportedPathRename
)

func (k TransformErrorKind) String() string {
	switch k {
	case ErrKindUnknownDirective:
		return "unknown-directive"
	case ErrKindInvalidRename:
		return "invalid-rename"
	case ErrKindInvalidRemove:
		return "invalid-remove"
	case ErrKindInvalidMerge:
		return "invalid-merge"
	case ErrKindInvalidReplace:
		return "invalid-replace"
	case ErrKindInvalidPath:
		return "invalid-path"
	case ErrKindUnsupportedPathRename:
		return "unsupported-path-rename"
	default:
		return "unknown"
	}
}

type sentinel struct{ kind TransformErrorKind }

func (s sentinel) Error() string { return "jdt: " + s.kind.String() }

var (
	ErrUnknownDirective      error = sentinel{ErrKindUnknownDirective}
	ErrInvalidRename         error = sentinel{ErrKindInvalidRename}
	ErrInvalidRemove         error = sentinel{ErrKindInvalidRemove}
	ErrInvalidMerge          error = sentinel{ErrKindInvalidMerge}
	ErrInvalidReplace        error = sentinel{ErrKindInvalidReplace}
	ErrInvalidPath           error = sentinel{ErrKindInvalidPath}
	ErrUnsupportedPathRename error = sentinel{ErrKindUnsupportedPathRename}
)

var sentinelByKind = map[TransformErrorKind]error{
	ErrKindUnknownDirective:      ErrUnknownDirective,
	ErrKindInvalidRename:         ErrInvalidRename,
	ErrKindInvalidRemove:         ErrInvalidRemove,
	ErrKindInvalidMerge:          ErrInvalidMerge,
	ErrKindInvalidReplace:        ErrInvalidReplace,
	ErrKindInvalidPath:           ErrInvalidPath,
	ErrKindUnsupportedPathRename: ErrUnsupportedPathRename,
}

// TransformError is returned by Transform. Like jtd.CompileError, it wraps
// a matchable sentinel with a human-readable detail via pkg/errors.
type TransformError struct {
	Kind TransformErrorKind
	path string
	err  error
}

func newTransformError(kind TransformErrorKind, path, detail string) *TransformError {
	return &TransformError{
		Kind: kind,
		path: path,
		err:  errors.WithMessage(sentinelByKind[kind], detail),
	}
}

// Path returns a JSON-Pointer-shaped path into the transform document
// naming where evaluation failed.
func (e *TransformError) Path() string { return e.path }

func (e *TransformError) Error() string {
	if e.path == "" {
		return e.err.Error()
	}
	return e.err.Error() + " (at " + e.path + ")"
}

func (e *TransformError) Unwrap() error { return e.err }
