// Package mkgraph compiles grammar transducer text into a decoding graph by
// running an external graph-compiler binary against a prototype language
// directory.
package mkgraph

import (
	"context"
	"errors"
	"fmt"
)

// Compiler turns grammar transducer text into a decoding graph file and
// returns the graph's path. The caller owns the returned file.
type Compiler interface {
	Compile(ctx context.Context, protoDir string, fst []byte, outPath string) (string, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, protoDir string, fst []byte, outPath string) (string, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, protoDir string, fst []byte, outPath string) (string, error) {
	return f(ctx, protoDir, fst, outPath)
}

// ErrToolNotFound is wrapped by a ToolError when the compiler binary cannot
// be located.
var ErrToolNotFound = errors.New("graph compiler not found")

// ToolError reports a graph compiler that could not run or exited abnormally.
type ToolError struct {
	Path   string // compiler binary
	Err    error  // underlying failure, e.g. *exec.ExitError
	Stderr string // trimmed stderr of the failed run
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("graph compiler %s: %v", e.Path, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
