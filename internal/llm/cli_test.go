package llm

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestCLIClientComplete(t *testing.T) {
	// echo prints its arguments, so the output carries the prompt back.
	c := NewCLIClient("echo")

	out, err := c.Complete(context.Background(), "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("output = %q, want the prompt echoed", out)
	}
}

func TestCLIClientModelFlag(t *testing.T) {
	c := NewCLIClient("echo", WithModel("gemini-2.5-pro"))

	out, err := c.Complete(context.Background(), "ping")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "--model gemini-2.5-pro") {
		t.Errorf("output = %q, want model flag passed through", out)
	}
}

func TestCLIClientMissingBinary(t *testing.T) {
	c := NewCLIClient("no-such-binary-skillforge-test")

	_, err := c.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !strings.Contains(err.Error(), "gemini CLI failed") {
		t.Errorf("err = %v", err)
	}
}

func TestCLIClientCanceledContext(t *testing.T) {
	c := NewCLIClient("echo", WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Complete(ctx, "prompt"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestCLIClientName(t *testing.T) {
	if got := NewCLIClient("gemini").Name(); got != "cli:gemini" {
		t.Errorf("Name() = %q", got)
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"abcdefghij", 4, "...ghij"},
	}

	for _, tt := range tests {
		if got := tail(tt.in, tt.n); got != tt.want {
			t.Errorf("tail(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
