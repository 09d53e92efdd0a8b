package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kbukum/liftkit/component"
)

// Summary prints what the application started.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
	colored         bool
	notes           []string
}

// NewSummary creates a summary writing to stderr, which keeps stdout free
// for command output.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stderr, colored: true}
}

// SetOutput redirects the summary. Only the standard streams get colors,
// and only when color.NoColor allows them.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
	s.colored = w == os.Stdout || w == os.Stderr
}

func (s *Summary) paint(status component.HealthStatus, text string) string {
	if !s.colored {
		return text
	}
	var c *color.Color
	switch status {
	case component.StatusHealthy:
		c = color.New(color.FgGreen)
	case component.StatusDegraded:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed, color.Bold)
	}
	return c.Sprint(text)
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// AddNote adds a free-form line, such as the data file in use.
func (s *Summary) AddNote(format string, args ...any) {
	s.notes = append(s.notes, fmt.Sprintf(format, args...))
}

// DisplaySummary prints the registered components with their live health.
func (s *Summary) DisplaySummary(registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var descs []component.Description
	var health []component.Health
	if registry != nil {
		descs = registry.Descriptions()
		health = registry.HealthAll(context.Background())
	}

	if len(descs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	} else {
		fmt.Fprintf(w, "📦 Components\n")
		healthy := 0
		for i, d := range descs {
			status := component.StatusHealthy
			msg := ""
			if i < len(health) {
				status, msg = health[i].Status, health[i].Message
			}
			if status == component.StatusHealthy {
				healthy++
			}
			line := fmt.Sprintf("%s %s [%s]", healthStatusIcon(status), s.paint(status, d.Name), d.Type)
			if d.Details != "" {
				line += ": " + d.Details
			}
			if msg != "" {
				line += " (" + msg + ")"
			}
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(descs)), line)
		}
		fmt.Fprintf(w, "\n")
		if healthy == len(descs) {
			fmt.Fprintf(w, "✅ All components healthy (%d/%d)\n", healthy, len(descs))
		} else {
			fmt.Fprintf(w, "⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(descs))
		}
	}

	if len(s.notes) > 0 {
		fmt.Fprintf(w, "\n📝 Notes\n")
		for i, n := range s.notes {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(s.notes)), strings.TrimSpace(n))
		}
	}
	fmt.Fprintf(w, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
