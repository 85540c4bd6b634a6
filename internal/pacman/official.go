// Package pacman queries the system package managers for pending updates.
// It wraps the external tools (checkupdates, pacman, the aurutils vercmp
// helper) behind a narrow Runner interface and parses their line output
// defensively: lines that do not match the expected shape are skipped,
// never fatal.
package pacman

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/obentoo/waybar-updates/internal/updates"
)

const checkupdatesTool = "checkupdates"

// checkupdates exit codes: 0 = updates listed, 1 = error, 2 = no updates.
const (
	checkupdatesExitOK   = 0
	checkupdatesExitNone = 2
)

// Client queries pending updates through a Runner.
type Client struct {
	runner Runner
	logger *slog.Logger
}

// NewClient creates a query client on top of the given runner.
func NewClient(runner Runner, logger *slog.Logger) *Client {
	return &Client{runner: runner, logger: logger}
}

// OfficialUpdates lists pending updates from the official repositories.
// With allowNetwork false it only reads the cached sync database state
// (checkupdates --nosync); with true it refreshes the private database
// copy first, which touches the network.
func (c *Client) OfficialUpdates(ctx context.Context, allowNetwork bool) ([]updates.Update, error) {
	args := []string{"--nosync"}
	if allowNetwork {
		args = nil
	}

	res, err := c.runner.Run(ctx, "", checkupdatesTool, args...)
	if err != nil {
		return nil, err
	}

	switch res.ExitCode {
	case checkupdatesExitOK:
		return c.parseUpdates(res.Stdout, updates.OriginOfficial), nil
	case checkupdatesExitNone:
		return []updates.Update{}, nil
	default:
		stderr := strings.TrimSpace(res.Stderr)
		if allowNetwork && strings.Contains(stderr, "Cannot fetch updates") {
			return nil, fmt.Errorf("%w: %s", ErrNoNetwork, stderr)
		}
		return nil, fmt.Errorf("%w: %s exited %d: %s", ErrToolFailed, checkupdatesTool, res.ExitCode, stderr)
	}
}

// parseUpdates reads "name old_version -> new_version" lines. Anything
// else is dropped silently.
func (c *Client) parseUpdates(output string, origin updates.Origin) []updates.Update {
	result := []updates.Update{}
	for _, line := range strings.Split(output, "\n") {
		u, ok := parseUpdateLine(line, origin)
		if !ok {
			if strings.TrimSpace(line) != "" {
				c.logger.Debug("skipping unparseable line", "origin", origin, "line", line)
			}
			continue
		}
		result = append(result, u)
	}
	return result
}

// parseUpdateLine parses one "name old -> new" line. Package names may
// carry a trailing colon in some helper output; it is stripped.
func parseUpdateLine(line string, origin updates.Origin) (updates.Update, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[2] != "->" {
		return updates.Update{}, false
	}
	name := strings.TrimSuffix(fields[0], ":")
	if name == "" {
		return updates.Update{}, false
	}
	return updates.New(name, fields[1], fields[3], origin), true
}
