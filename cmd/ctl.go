package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/twm/internal/config"
	"github.com/bnema/twm/internal/ipc"
	"github.com/bnema/twm/internal/ui"
	"github.com/spf13/cobra"
)

var ctlCmd = &cobra.Command{
	Use:   "ctl",
	Short: "Control the running compositor",
}

var ctlQuitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Stop the compositor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.SendQuit(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "twm is stopping"))
		return nil
	},
}

var ctlSpawnCmd = &cobra.Command{
	Use:   "spawn [command...]",
	Short: "Start a program inside the compositor, the terminal by default",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		command := strings.Join(args, " ")
		if err := client.SendSpawn(command); err != nil {
			return err
		}
		if command == "" {
			command = "terminal"
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("started %s", command)))
		return nil
	},
}

var ctlCloseCmd = &cobra.Command{
	Use:   "close [window-id]",
	Short: "Ask a window to close, the focused one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id uint64
		if len(args) == 1 {
			var err error
			id, err = strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid window id %q", args[0])
			}
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.SendClose(id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, "close requested"))
		return nil
	},
}

var ctlNewWindowCmd = &cobra.Command{
	Use:   "new-window [title]",
	Short: "Map an in-process test window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := "loopback"
		if len(args) == 1 {
			title = args[0]
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := client.SendNewWindow(title)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatResult(true, fmt.Sprintf("mapped window %d", id)))
		return nil
	},
}

func init() {
	ctlSpawnCmd.Flags().SetInterspersed(false)

	ctlCmd.AddCommand(ctlQuitCmd)
	ctlCmd.AddCommand(ctlSpawnCmd)
	ctlCmd.AddCommand(ctlCloseCmd)
	ctlCmd.AddCommand(ctlNewWindowCmd)
}

func newClient() (*ipc.Client, error) {
	client, err := ipc.NewClient(config.Get().IPC.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC client: %w", err)
	}
	return client, nil
}
