package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mmcdole/kinoteka/internal/domain"
)

// Launcher opens movie detail pages in a web browser
type Launcher struct {
	baseURL string
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	logger  *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
}

// NewLauncher creates a launcher for pages served under baseURL
func NewLauncher(baseURL string, cfg BrowserConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		command: cfg.Command,
		args:    cfg.Args,
		logger:  logger,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// MovieURL returns the detail page address of m
func (l *Launcher) MovieURL(m domain.Movie) string {
	return l.baseURL + m.DetailPath()
}

// OpenMovie opens the detail page of m
func (l *Launcher) OpenMovie(m domain.Movie) error {
	if m.ID == "" {
		return fmt.Errorf("movie %q has no identifier", m.Title)
	}
	return l.Open(l.MovieURL(m))
}

// Open opens url in the configured browser or the system default
func (l *Launcher) Open(url string) error {
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("launching browser", "command", l.command, "args", args)
		return l.start(l.command, args...)
	}

	name, args := defaultOpener(runtime.GOOS, url)
	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)
	return l.start(name, args...)
}

// defaultOpener returns the system command that opens url
func defaultOpener(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
