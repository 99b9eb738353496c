// Package jtd compiles JSON Type Definition (RFC 8927) schemas into an
// immutable AST and validates JSON instances against them with a
// non-recursive, error-accumulating stack machine.
//
// Compile turns a parsed schema (see the value subpackage) into a Root.
// Validate walks a Root against an instance and returns every standardized
// error indicator it finds, never stopping at the first failure. Both
// operate purely over their inputs: a Root may be validated against many
// instances concurrently, and a Validate call's working state is entirely
// local to that call.
package jtd
