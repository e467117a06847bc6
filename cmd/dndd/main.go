package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/dnd/internal/config"
	"github.com/vango-dev/dnd/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		var de *errors.DndError
		if stderrors.As(err, &de) {
			fmt.Fprint(os.Stderr, de.Format())
		} else {
			label := lipgloss.NewRenderer(os.Stderr).NewStyle().
				Foreground(lipgloss.Color("1")).Render("Error:")
			fmt.Fprintf(os.Stderr, "%s %s\n", label, err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dndd",
		Short: "Server-driven drag and drop",
		Long: `dndd serves draggable elements over a WebSocket.

The browser forwards native drag events; Go decides what is being
dragged, which classes to show and what happened when the drag ended.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		serveCmd(),
		simulateCmd(),
		versionCmd(),
	)
	return cmd
}

// loadConfig reads path, or dnd.json (then dnd.toml) in the working
// directory when path is empty. No configuration file there means defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.Load(".")
	if stderrors.Is(err, errors.New("E121")) {
		return config.New(), nil
	}
	return cfg, err
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	check := lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	fmt.Fprintf(w, "%s %s\n", check, fmt.Sprintf(format, args...))
}
