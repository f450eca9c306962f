package mkgraph

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/huangruizhe/gentle/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFST = "0 1 a a 2\n0 1 <unk> <unk> 0\n1 0\n"

// fakeCompiler writes a shell script standing in for the graph compiler.
// The script records its argument count and input path in record, then
// runs body.
func fakeCompiler(t *testing.T, body string) (bin, record string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed")
	}
	dir := t.TempDir()
	record = filepath.Join(dir, "record")
	bin = filepath.Join(dir, "mkgraph.sh")
	script := "#!/bin/sh\n" +
		"echo \"$#\" > '" + record + "'\n" +
		"echo \"$2\" >> '" + record + "'\n" +
		body + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, record
}

func readRecord(t *testing.T, record string) (argc, input string) {
	t.Helper()
	data, err := os.ReadFile(record)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	return lines[0], lines[1]
}

func TestExecCompile(t *testing.T) {
	bin, record := fakeCompiler(t, `cp "$2" "$3"`)
	out := filepath.Join(t.TempDir(), "graph_HCLG.fst")

	c := &Exec{Path: bin, TempDir: t.TempDir()}
	got, err := c.Compile(context.Background(), "/models/langdir", []byte(testFST), out)
	require.NoError(t, err)
	assert.Equal(t, out, got)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, testFST, string(data))

	argc, input := readRecord(t, record)
	assert.Equal(t, "3", argc)
	assert.NoFileExists(t, input, "temporary input must be removed")
}

func TestExecCompileTempOutput(t *testing.T) {
	bin, _ := fakeCompiler(t, `cp "$2" "$3"`)
	tmp := t.TempDir()

	got, err := (&Exec{Path: bin, TempDir: tmp}).Compile(context.Background(), "proto", []byte(testFST), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "_HCLG.fst"), got)
	assert.Equal(t, tmp, filepath.Dir(got))
	assert.FileExists(t, got)
}

func TestExecCompileFailure(t *testing.T) {
	bin, record := fakeCompiler(t, `echo partial > "$3"; echo "missing L.fst" >&2; exit 3`)
	out := filepath.Join(t.TempDir(), "graph_HCLG.fst")

	_, err := NewExec(bin).Compile(context.Background(), "proto", []byte(testFST), out)
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "missing L.fst", toolErr.Stderr)
	assert.Contains(t, err.Error(), "missing L.fst")

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())

	_, input := readRecord(t, record)
	assert.NoFileExists(t, input, "temporary input must be removed on failure")
	assert.NoFileExists(t, out, "partial output must be removed on failure")
}

func TestExecCompileNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-mkgraph")
	_, err := NewExec(missing).Compile(context.Background(), "proto", []byte(testFST), "out.fst")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, missing, toolErr.Path)
}

func TestExecCompileCanceled(t *testing.T) {
	bin, record := fakeCompiler(t, `cp "$2" "$3"`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExec(bin).Compile(ctx, "proto", []byte(testFST), filepath.Join(t.TempDir(), "out.fst"))
	require.Error(t, err)
	assert.NoFileExists(t, record, "canceled compiler must not run")
}

func TestCompilerFunc(t *testing.T) {
	var gotProto string
	var c Compiler = CompilerFunc(func(_ context.Context, protoDir string, fst []byte, outPath string) (string, error) {
		gotProto = protoDir
		return outPath, nil
	})
	got, err := c.Compile(context.Background(), "proto", nil, "g.fst")
	require.NoError(t, err)
	assert.Equal(t, "g.fst", got)
	assert.Equal(t, "proto", gotProto)
}

// The compiler below swaps its input file for a non-empty directory, so
// removing the temporary input fails. The failure is logged, and the
// compile result is returned unchanged.
func TestExecCompileCleanupFailure(t *testing.T) {
	const swap = `rm "$2"; mkdir "$2"; touch "$2/x"`
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"compiler fails", swap + "; exit 3", true},
		{"compiler succeeds", swap + `; echo graph > "$3"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, record := fakeCompiler(t, tt.body)
			var logs bytes.Buffer
			ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("debug", "text", &logs))
			out := filepath.Join(t.TempDir(), "graph_HCLG.fst")

			got, err := (&Exec{Path: bin, TempDir: t.TempDir()}).Compile(ctx, "proto", []byte(testFST), out)
			if tt.wantErr {
				var toolErr *ToolError
				require.True(t, errors.As(err, &toolErr), "got %v", err)
				var exitErr *exec.ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 3, exitErr.ExitCode())
			} else {
				require.NoError(t, err)
				assert.Equal(t, out, got)
				assert.FileExists(t, out)
			}

			_, input := readRecord(t, record)
			assert.DirExists(t, input)
			assert.Contains(t, logs.String(), "Failed to remove temporary file.")
			assert.Contains(t, logs.String(), input)
		})
	}
}
