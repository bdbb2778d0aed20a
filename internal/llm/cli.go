package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"skillforge/internal/logging"
)

// CLIClient invokes the Gemini CLI binary as `<binary> -p <prompt>
// [--model <name>]` and reads the completion from stdout.
type CLIClient struct {
	binary  string
	model   string
	workDir string
	timeout time.Duration
}

// CLIOption configures a CLIClient.
type CLIOption func(*CLIClient)

// WithModel sets the --model flag passed to the binary.
func WithModel(model string) CLIOption {
	return func(c *CLIClient) { c.model = model }
}

// WithWorkDir sets the working directory for the subprocess.
func WithWorkDir(dir string) CLIOption {
	return func(c *CLIClient) { c.workDir = dir }
}

// WithTimeout bounds a single invocation's wall-clock time.
func WithTimeout(d time.Duration) CLIOption {
	return func(c *CLIClient) { c.timeout = d }
}

// NewCLIClient creates a client for the given binary path.
func NewCLIClient(binary string, opts ...CLIOption) *CLIClient {
	c := &CLIClient{
		binary:  binary,
		timeout: 300 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete runs the binary with the prompt and returns trimmed stdout.
// The call is bounded by the client timeout unless the context already
// carries an earlier deadline.
func (c *CLIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-p", prompt}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}

	start := time.Now()
	logging.APIDebug("[CLI] invoking %s prompt_len=%d model=%s", c.binary, len(prompt), c.model)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = c.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			logging.APIError("[CLI] timeout after %v", time.Since(start))
			return "", fmt.Errorf("gemini CLI timed out after %v: %w", c.timeout, ctx.Err())
		}
		logging.APIError("[CLI] invocation failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("gemini CLI failed: %w (stderr: %s)", err, tail(stderr.String(), 400))
	}

	response := strings.TrimSpace(stdout.String())
	logging.API("[CLI] completed in %v response_len=%d", time.Since(start), len(response))
	return response, nil
}

// Name identifies the backend for logging.
func (c *CLIClient) Name() string {
	return fmt.Sprintf("cli:%s", c.binary)
}

// tail returns the last n bytes of s for compact error messages.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
