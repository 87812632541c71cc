package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/twm/internal/ipc"
	"github.com/bnema/twm/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var (
	statusOutput   string
	statusWatch    bool
	statusInterval time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running compositor",
	Long:  `Show the backend, output, pointer, grab and mapped windows of the running twm instance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if statusWatch {
			p := tea.NewProgram(ui.NewWatchModel(client.SendStatus, statusInterval))
			_, err := p.Run()
			return err
		}

		status, err := client.SendStatus()
		if errors.Is(err, ipc.ErrNotRunning) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus(false, "twm is not running"))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		return writeStatus(cmd.OutOrStdout(), status, statusOutput, terminalWidth())
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "Output format: text, json or yaml")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Refresh the status until interrupted")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", time.Second, "Refresh interval for --watch")
}

func writeStatus(w io.Writer, status *ipc.Status, format string, width int) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprint(w, ui.RenderStatus(status, width))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(status); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}
