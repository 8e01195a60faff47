package auth

import (
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/cli/browser"
)

// Launcher opens the authorization URL in the user's browser. Implementations
// must not block on the browser process; failure to open is surfaced as a
// KindBrowser error so callers can fall back to displaying the URL.
type Launcher interface {
	OpenURL(url string) error
	Available() bool
}

// SystemBrowser launches the platform's default browser.
type SystemBrowser struct{}

// NewSystemBrowser returns the production launcher.
func NewSystemBrowser() *SystemBrowser {
	return &SystemBrowser{}
}

// OpenURL opens url in the default browser without waiting for it to exit.
func (*SystemBrowser) OpenURL(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return WrapError(KindBrowser, "failed to open browser", err)
	}
	return nil
}

// Available reports whether a browser can plausibly be opened. On Linux this
// requires a display and an opener binary; elsewhere a default browser is
// assumed to exist.
func (*SystemBrowser) Available() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	_, err := exec.LookPath("xdg-open")
	return err == nil
}

// RecordingLauncher is the deterministic test variant: it records opened URLs
// instead of launching anything, optionally failing with a fixed error.
type RecordingLauncher struct {
	mu   sync.Mutex
	urls []string

	// Err, when set, is returned by every OpenURL call.
	Err error
}

// NewRecordingLauncher returns a launcher that records opened URLs.
func NewRecordingLauncher() *RecordingLauncher {
	return &RecordingLauncher{}
}

// OpenURL records the URL, or fails with the configured error.
func (l *RecordingLauncher) OpenURL(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.urls = append(l.urls, url)
	return nil
}

// Available always reports true.
func (*RecordingLauncher) Available() bool {
	return true
}

// OpenedURLs returns a copy of the URLs opened so far.
func (l *RecordingLauncher) OpenedURLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}
