package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommand returns the platform launcher for url, or nil when the
// platform has no known launcher.
func browserCommand(url string) *exec.Cmd {
	switch getRuntime() {
	case "darwin":
		return exec.Command("open", url)
	case "linux":
		return exec.Command("xdg-open", url)
	case "windows":
		return exec.Command("cmd", "/c", "start", url)
	}
	return nil
}

// OpenBrowser opens the default system browser to url, used by the "open"
// commands to jump to the web player.
func OpenBrowser(url string) error {
	cmd := browserCommand(url)
	if cmd == nil {
		return fmt.Errorf("unsupported platform: %s", getRuntime())
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
