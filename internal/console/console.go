// Package console renders build progress for humans. It subscribes to the
// build event bus and owns all terminal output while watchers run; the
// bundler's own per-build stats printing stays suppressed.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/blitz-web/blitz/internal/eventbus"
)

const durationUnit = time.Millisecond

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

// Reporter writes formatted build status lines.
type Reporter struct {
	mu    sync.Mutex
	out   io.Writer
	term  *termenv.Output
	clear bool
}

// New creates a Reporter writing to out. When clear is set the screen is
// cleared before each rebuild report, keeping only the latest status visible.
func New(out io.Writer, clear bool) *Reporter {
	return &Reporter{
		out:   out,
		term:  termenv.NewOutput(out),
		clear: clear,
	}
}

// Handle is an eventbus.Listener rendering build lifecycle events.
func (r *Reporter) Handle(e eventbus.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Type {
	case eventbus.BuildStarted:
		if r.clear {
			r.term.ClearScreen()
		}
		fmt.Fprintf(r.out, "%s compiling %s...\n", dimStyle.Render("•"), e.Target)
	case eventbus.BuildSucceeded:
		fmt.Fprintf(r.out, "%s %s compiled %s\n",
			okStyle.Render("✓"), e.Target, dimStyle.Render(e.Duration.Round(durationUnit).String()))
	case eventbus.BuildFailed:
		fmt.Fprintf(r.out, "%s %s failed to compile\n", failStyle.Render("✗"), e.Target)
		for _, msg := range e.Errors {
			fmt.Fprintf(r.out, "  %s\n", failStyle.Render(msg))
		}
	}
}

// Ready reports the two listening endpoints once both watchers are running.
func (r *Reporter) Ready(appURL, assetsURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\n%s\n", titleStyle.Render("blitz dev server running"))
	fmt.Fprintf(r.out, "  application  %s\n", appURL)
	fmt.Fprintf(r.out, "  assets       %s\n\n", assetsURL)
}

// Successf renders a final success line.
func (r *Reporter) Successf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n", okStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// Errorf renders a fatal error message.
func (r *Reporter) Errorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n", failStyle.Render("error:"), fmt.Sprintf(format, args...))
}
