// File: sysinfo/command.go
package sysinfo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds one external probe. A reporter runs next to a dying
// process and must not hang on a stuck tool.
const commandTimeout = 2 * time.Second

// Commander runs the external tools some probes read from (uname today).
type Commander interface {
	// Execute runs name with args and returns its standard output.
	Execute(name string, args ...string) ([]byte, error)
}

// RealCommander runs commands on the host, each under commandTimeout.
type RealCommander struct{}

func (RealCommander) Execute(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.TrimSpace(name+" "+strings.Join(args, " ")), err)
	}
	return out, nil
}

var cmdExecutor Commander = RealCommander{}

// SetCommander replaces the commander used by the probes. Tests use it to
// return canned output.
func SetCommander(c Commander) {
	cmdExecutor = c
}
