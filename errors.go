package minidex

import "errors"

// Sentinel errors returned by the engine's structural operations. Query-time
// failures never surface one of these to a caller of Search/AutoSuggest —
// they degrade to an empty result set instead (see evaluator.go).
var (
	// ErrDuplicateID is returned by Add when the document's external id is
	// already live in the registry.
	ErrDuplicateID = errors.New("minidex: document id already indexed")

	// ErrUnknownDocument is returned by Remove when the external id is not
	// present in the registry.
	ErrUnknownDocument = errors.New("minidex: unknown document id")

	// ErrUnknownField is returned when a declared field is absent from a
	// document and extractField has no fallback.
	ErrUnknownField = errors.New("minidex: field missing from document")

	// ErrInvalidPrefix is returned by View.AtPrefix when the requested
	// extension is inconsistent with the view's pending edge suffix.
	ErrInvalidPrefix = errors.New("minidex: prefix does not extend view")

	// ErrIncompatibleSnapshot is returned by LoadJSON when the schema
	// version or field list disagrees with the running engine.
	ErrIncompatibleSnapshot = errors.New("minidex: incompatible snapshot")

	// errParse marks a malformed query string. It never escapes the
	// package: the evaluator converts it into an empty expression.
	errParse = errors.New("minidex: parse error")
)
