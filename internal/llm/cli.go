// cli.go implements Client by spawning the Claude CLI per call.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CLIClient shells out to the `claude` binary with --output-format json for
// each completion. One subprocess per call, no pooling.
type CLIClient struct {
	// Binary overrides the executable name. Defaults to "claude".
	Binary string
}

// NewCLIClient returns a client that invokes the default claude binary.
func NewCLIClient() *CLIClient {
	return &CLIClient{Binary: "claude"}
}

// Complete spawns the CLI, waits for it to exit, and parses the JSON
// envelope from stdout.
func (c *CLIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	binary := c.Binary
	if binary == "" {
		binary = "claude"
	}

	args := buildArgs(req)
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("claude exited with error: %w\nstderr: %s", err, stderr.String())
	}

	resp, err := ParseEnvelope(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parsing claude output: %w", err)
	}
	return resp, nil
}

// buildArgs constructs the CLI argument slice for one completion. System
// messages become --append-system-prompt; the remaining messages are joined
// into the task prompt.
func buildArgs(req Request) []string {
	var system []string
	var user []string
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			system = append(system, msg.Content)
		} else {
			user = append(user, msg.Content)
		}
	}

	args := []string{
		"-p", strings.Join(user, "\n\n"),
		"--output-format", "json",
	}
	if len(system) > 0 {
		args = append(args, "--append-system-prompt", strings.Join(system, "\n\n"))
	}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}
	if req.MaxOutputTokens > 0 {
		args = append(args, "--max-output-tokens", strconv.Itoa(req.MaxOutputTokens))
	}
	return args
}
