package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ToolError wraps a failed ffmpeg/ffprobe invocation with the captured
// stderr tail, which usually names the actual cause.
type ToolError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	tail := stderrTail(e.Stderr, 5)
	if tail == "" {
		return fmt.Sprintf("%s failed: %v", e.Args[0], e.Err)
	}
	return fmt.Sprintf("%s failed: %v\n%s", e.Args[0], e.Err, tail)
}

func (e *ToolError) Unwrap() error { return e.Err }

func stderrTail(stderr string, n int) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExecOptions controls a single invocation.
type ExecOptions struct {
	// Dir is the working directory; vidstabtransform writes its debug
	// file relative to it.
	Dir string
	// Verbose tees stderr to the terminal in real time.
	Verbose bool
	// CaptureStdout returns stdout instead of discarding it.
	CaptureStdout bool
}

// Execute runs a command, capturing stderr for error context. Returns
// captured stdout when requested.
func Execute(ctx context.Context, opts ExecOptions, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = opts.Dir

	var stderrBuf bytes.Buffer
	if opts.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	var stdoutBuf bytes.Buffer
	if opts.CaptureStdout {
		cmd.Stdout = &stdoutBuf
	}

	if err := cmd.Run(); err != nil {
		return nil, &ToolError{Args: args, Stderr: stderrBuf.String(), Err: err}
	}
	return stdoutBuf.Bytes(), nil
}

// EscapeFilterValue escapes a string for use inside an ffmpeg filter
// argument. Paths routinely contain ':' and ',' which would otherwise
// split the filter spec.
func EscapeFilterValue(value string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`,`, `\,`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return r.Replace(value)
}
