package mkgraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/huangruizhe/gentle/internal/ctxlog"
)

// maxStderr bounds how much compiler stderr is kept in a ToolError.
const maxStderr = 4096

// Exec runs a graph compiler binary as
//
//	Path <proto-dir> <input-fst> <output-graph>
type Exec struct {
	Path    string // binary name or path, resolved with exec.LookPath
	TempDir string // directory for temporary files; "" = os.TempDir()
}

// NewExec creates a compiler that runs the binary at path.
func NewExec(path string) *Exec {
	return &Exec{Path: path}
}

// Compile writes fst to a temporary file and runs the compiler on it.
// The temporary input is removed on every path. On failure a partially
// written output is removed too, and the error is a *ToolError.
// An empty outPath allocates a temporary "*_HCLG.fst" path for the graph.
func (c *Exec) Compile(ctx context.Context, protoDir string, fst []byte, outPath string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	bin, err := exec.LookPath(c.Path)
	if err != nil {
		return "", &ToolError{Path: c.Path, Err: fmt.Errorf("%w: %v", ErrToolNotFound, err)}
	}

	inPath, err := c.writeInput(fst)
	if inPath != "" {
		defer removeQuietly(logger, inPath)
	}
	if err != nil {
		return "", err
	}

	if outPath == "" {
		out, err := os.CreateTemp(c.TempDir, "*_HCLG.fst")
		if err != nil {
			return "", fmt.Errorf("create graph temp file: %w", err)
		}
		out.Close()
		outPath = out.Name()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, protoDir, inPath, outPath)
	cmd.Stderr = &stderr
	logger.Debug("Running graph compiler.", "path", bin, "proto_dir", protoDir, "input", inPath, "output", outPath)

	if err := cmd.Run(); err != nil {
		removeQuietly(logger, outPath)
		return "", &ToolError{Path: bin, Err: err, Stderr: tail(stderr.String(), maxStderr)}
	}
	return outPath, nil
}

// writeInput stores fst in a new temporary file. The returned path is set
// whenever the file was created, even if writing it failed.
func (c *Exec) writeInput(fst []byte) (string, error) {
	f, err := os.CreateTemp(c.TempDir, "*.txt.fst")
	if err != nil {
		return "", fmt.Errorf("create fst temp file: %w", err)
	}
	if _, err := f.Write(fst); err != nil {
		f.Close()
		return f.Name(), fmt.Errorf("write fst temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return f.Name(), fmt.Errorf("close fst temp file: %w", err)
	}
	return f.Name(), nil
}

// removeQuietly deletes path, logging instead of returning failures so a
// cleanup error never hides the error being reported.
func removeQuietly(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to remove temporary file.", "path", path, "error", err)
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
