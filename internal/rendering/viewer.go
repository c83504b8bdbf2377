package rendering

import (
	"fmt"
	"os/exec"
	"runtime"
)

// viewerCommand returns the platform command that opens a file in the default application.
func viewerCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// OpenInViewer hands a rendered report to the desktop's default viewer.
func OpenInViewer(path string) error {
	name, args := viewerCommand(runtime.GOOS)
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %w", ErrNoViewer, err)
	}
	if err := exec.Command(name, append(args, path)...).Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrNoViewer, err)
	}
	return nil
}
