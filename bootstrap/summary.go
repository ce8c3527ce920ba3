package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/simpleioc/di"
	"github.com/kbukum/simpleioc/logger"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stdout,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// DisplaySummary prints one line per registered contract with its
// implementation, keys and cached instance count.
func (s *Summary) DisplaySummary(registrations []di.RegistrationInfo, log *logger.Logger) {
	fmt.Fprintf(s.out, "\n")
	fmt.Fprintf(s.out, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	fmt.Fprintf(s.out, "📦 Registry (%d)\n", len(registrations))
	if len(registrations) == 0 {
		fmt.Fprintf(s.out, "   └── No contracts registered\n")
	}

	created := 0
	for i, reg := range registrations {
		prefix := "├──"
		if i == len(registrations)-1 {
			prefix = "└──"
		}
		status := "lazy"
		if reg.Created > 0 {
			status = "active"
			created++
		}
		fmt.Fprintf(s.out, "   %s %s %s%s [%s] (%d/%d created)\n",
			prefix, statusIcon(status), reg.Contract, implementation(reg), keyList(reg.Keys), reg.Created, len(reg.Keys))
	}
	fmt.Fprintf(s.out, "\n")

	if log != nil {
		log.Info("Registry ready", map[string]interface{}{
			"contracts": len(registrations),
			"active":    created,
			"startup":   s.startupDuration.String(),
		})
	}
}

func implementation(reg di.RegistrationInfo) string {
	if reg.Implementation == "" || reg.Implementation == reg.Contract {
		return ""
	}
	return " → " + reg.Implementation
}

func keyList(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		if k == "" {
			k = "default"
		}
		names[i] = k
	}
	return strings.Join(names, ", ")
}

func statusIcon(status string) string {
	switch status {
	case "active":
		return "✅"
	case "lazy":
		return "⚡"
	default:
		return "⚠️"
	}
}
