package pacman

import (
	"context"
	"fmt"
	"strings"

	"github.com/obentoo/waybar-updates/internal/pkgver"
	"github.com/obentoo/waybar-updates/internal/updates"
)

const (
	pacmanTool    = "pacman"
	aurHelperTool = "aur"
)

// AURUpdates lists pending updates for installed foreign packages. It runs
// pacman -Qm for the installed set, feeds it to `aur vercmp`, and keeps
// only packages whose remote version is strictly newer than the installed
// one. Always touches the network.
func (c *Client) AURUpdates(ctx context.Context) ([]updates.Update, error) {
	res, err := c.runner.Run(ctx, "", pacmanTool, "-Qm")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s -Qm exited %d: %s",
			ErrToolFailed, pacmanTool, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	installed := parseForeignList(res.Stdout)
	if len(installed) == 0 {
		return []updates.Update{}, nil
	}

	var stdin strings.Builder
	for _, pkg := range installed {
		stdin.WriteString(pkg.name)
		stdin.WriteByte(' ')
		stdin.WriteString(pkg.version)
		stdin.WriteByte('\n')
	}

	res, err = c.runner.Run(ctx, stdin.String(), aurHelperTool, "vercmp")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s vercmp exited %d: %s",
			ErrNoNetwork, aurHelperTool, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	versions := make(map[string]string, len(installed))
	for _, pkg := range installed {
		versions[pkg.name] = pkg.version
	}

	pending := c.parseUpdates(res.Stdout, updates.OriginAUR)
	result := []updates.Update{}
	for _, u := range pending {
		// Trust our own comparison over the helper: a package whose
		// installed version is not older than the remote one is not an
		// update, whatever the helper printed.
		current, ok := versions[u.Name]
		if !ok {
			current = u.OldVersion
		}
		if !pkgver.Newer(u.NewVersion, current) {
			c.logger.Debug("dropping non-newer AUR entry",
				"package", u.Name, "installed", current, "remote", u.NewVersion)
			continue
		}
		result = append(result, u)
	}
	return result, nil
}

type foreignPackage struct {
	name    string
	version string
}

// parseForeignList reads "name version" lines from pacman -Qm output.
func parseForeignList(output string) []foreignPackage {
	var result []foreignPackage
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		result = append(result, foreignPackage{name: fields[0], version: fields[1]})
	}
	return result
}
