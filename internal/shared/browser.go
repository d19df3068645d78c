package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser launches the system's default browser at url. Callers should
// print the url for manual opening when this fails, since the auth flow can
// continue either way.
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	if name == "" {
		return fmt.Errorf("%w: no browser launcher for platform %s", ErrNotImplemented, runtime.GOOS)
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// browserCommand maps a GOOS value to the platform's URL-opening command.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "linux":
		return "xdg-open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", url}
	default:
		return "", nil
	}
}
