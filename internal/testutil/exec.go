package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrtamaki/mt/internal/cmdexec"
)

// Response represents a pre-configured command response for FakeCommander.
type Response struct {
	Output []byte
	Err    error
}

// FakeCommander returns pre-configured responses for testing.
// Responses are keyed by "name arg1 arg2 ..." format.
// If no exact match is found, it tries prefix matching.
type FakeCommander struct {
	// Responses maps command strings to their responses.
	// Key format: "command arg1 arg2" (e.g., "python3 -m venv", "curl -s")
	Responses map[string]Response

	// Effects maps command keys (same matching rules as Responses) to side
	// effects run before the response is returned, e.g. creating the files a
	// real tool would have created.
	Effects map[string]func(args []string)

	// Calls records all commands that were executed, in order.
	Calls []string

	// EnvCalls records the environment variable maps passed to RunWithEnv, in order.
	EnvCalls []map[string]string

	// Missing lists binaries LookPath reports as absent.
	Missing map[string]bool

	// DefaultResponse is returned when no matching response is found.
	// If nil, an error is returned for unmatched commands.
	DefaultResponse *Response
}

var _ cmdexec.Commander = (*FakeCommander)(nil)

// NewFakeCommander creates a FakeCommander with an empty response map.
func NewFakeCommander() *FakeCommander {
	return &FakeCommander{
		Responses: make(map[string]Response),
		Effects:   make(map[string]func(args []string)),
		Missing:   make(map[string]bool),
	}
}

// Register adds a response for the given command key.
func (c *FakeCommander) Register(key string, output string, err error) {
	c.Responses[key] = Response{
		Output: []byte(output),
		Err:    err,
	}
}

// OnRun registers a side effect for the given command key.
func (c *FakeCommander) OnRun(key string, fn func(args []string)) {
	c.Effects[key] = fn
}

// Run looks up the command in Responses and returns the matching response.
func (c *FakeCommander) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	fullCmd := name
	if len(args) > 0 {
		fullCmd = name + " " + strings.Join(args, " ")
	}

	c.Calls = append(c.Calls, fullCmd)

	if c.Missing[name] {
		return nil, fmt.Errorf("%w: %s", cmdexec.ErrToolMissing, name)
	}

	if key := longestKey(c.Effects, fullCmd); key != "" {
		c.Effects[key](args)
	}

	// Exact match first, then longest prefix.
	if key := longestKey(c.Responses, fullCmd); key != "" {
		resp := c.Responses[key]
		return resp.Output, resp.Err
	}

	// Default response.
	if c.DefaultResponse != nil {
		return c.DefaultResponse.Output, c.DefaultResponse.Err
	}

	return nil, fmt.Errorf("FakeCommander: no response registered for %q", fullCmd)
}

// RunWithEnv records the environment variables and delegates to Run logic.
func (c *FakeCommander) RunWithEnv(ctx context.Context, env map[string]string, name string, args ...string) ([]byte, error) {
	c.EnvCalls = append(c.EnvCalls, env)
	return c.Run(ctx, name, args...)
}

// RunInteractive delegates to Run logic and discards the output.
func (c *FakeCommander) RunInteractive(ctx context.Context, name string, args ...string) error {
	_, err := c.Run(ctx, name, args...)
	return err
}

// LookPath reports "/usr/bin/<name>" unless name is listed in Missing.
func (c *FakeCommander) LookPath(name string) (string, error) {
	if c.Missing[name] {
		return "", fmt.Errorf("%w: %s", cmdexec.ErrToolMissing, name)
	}
	return "/usr/bin/" + name, nil
}

// Called returns true if a command matching the given prefix was executed.
func (c *FakeCommander) Called(prefix string) bool {
	for _, call := range c.Calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

// CallCount returns the number of times a command matching the given prefix was executed.
func (c *FakeCommander) CallCount(prefix string) int {
	count := 0
	for _, call := range c.Calls {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return count
}

// longestKey returns the key equal to fullCmd, or else the longest key that
// is a prefix of it.
func longestKey[V any](m map[string]V, fullCmd string) string {
	if _, ok := m[fullCmd]; ok {
		return fullCmd
	}
	bestKey := ""
	for key := range m {
		if strings.HasPrefix(fullCmd, key) && len(key) > len(bestKey) {
			bestKey = key
		}
	}
	return bestKey
}
