package bootstrap

import (
	"fmt"
	"os/exec"
	"strings"
)

var defaultBrowsers = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// CheckBrowser verifies that a browser binary is reachable on PATH and
// returns its resolved path. Absence is fatal to the caller, there is
// no self-repair.
func CheckBrowser(names ...string) (string, error) {
	if len(names) == 0 {
		names = defaultBrowsers
	}
	for _, name := range names {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf(
		"no browser binary found on PATH (tried %s), install chromium before starting",
		strings.Join(names, ", "),
	)
}
