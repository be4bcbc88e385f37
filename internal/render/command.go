package render

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command renders by piping the source through an external converter
// and taking its stdout as the HTML fragment.
type Command struct {
	path string
	args []string
}

// NewCommand resolves argv[0] on PATH. It fails when the program is not
// installed, which callers treat as the backend being unavailable.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("render: empty command")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Command{path: path, args: argv[1:]}, nil
}

// Render runs the command with src on stdin.
func (c *Command) Render(src []byte) (string, error) {
	cmd := exec.Command(c.path, c.args...)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", c.path, err, msg)
		}
		return "", fmt.Errorf("%s: %w", c.path, err)
	}
	return stdout.String(), nil
}

// String returns the command line.
func (c *Command) String() string {
	return strings.Join(append([]string{c.path}, c.args...), " ")
}
