package expr

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// CodeInvalidNode indicates a node with zero or several variants set.
	CodeInvalidNode ErrorCode = "INVALID_NODE"

	// CodeUnknownLeaf indicates a leaf name missing from the registry.
	CodeUnknownLeaf ErrorCode = "UNKNOWN_LEAF"

	// CodeLeafArgs indicates a leaf factory rejected its args.
	CodeLeafArgs ErrorCode = "LEAF_ARGS"

	// CodeUnknownRef indicates a ref to a name that is not defined.
	CodeUnknownRef ErrorCode = "UNKNOWN_REF"

	// CodeRefCycle indicates refs that eventually reference themselves.
	CodeRefCycle ErrorCode = "REF_CYCLE"

	// CodeCEL indicates a CEL expression that failed to compile or is not boolean.
	CodeCEL ErrorCode = "CEL"
)

// CompileError is returned by Compiler.Compile.
type CompileError struct {
	Code    ErrorCode
	Path    string // node path, e.g. "when.all[2].not"
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Path, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a CompileError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
