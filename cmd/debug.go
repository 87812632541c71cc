package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/bnema/twm/internal/input"
	"github.com/bnema/twm/internal/logger"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:    "debug",
	Short:  "Debugging helpers",
	Hidden: true,
}

var (
	injectDelay  time.Duration
	injectSettle time.Duration
)

var debugInjectPointerCmd = &cobra.Command{
	Use:   "inject-pointer <step>...",
	Short: "Drive a virtual uinput mouse to exercise the tty backend",
	Long: `Create a virtual mouse through /dev/uinput and replay the given steps.

Steps:
  move:DX,DY        relative motion
  click:BUTTON      press and release left, right or middle
  press:BUTTON      press only
  release:BUTTON    release only
  wheel:N           vertical wheel clicks
  hwheel:N          horizontal wheel clicks
  sleep:DURATION    pause, e.g. sleep:200ms`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := input.ParseSteps(args)
		if err != nil {
			return err
		}

		// uinput needs write access to /dev/uinput
		if _, err := os.Stat("/dev/uinput"); err != nil {
			return fmt.Errorf("uinput is not available: %w", err)
		}

		inj, err := input.NewInjector("twm virtual pointer", injectDelay)
		if err != nil {
			return err
		}
		defer func() {
			if err := inj.Close(); err != nil {
				logger.Errorf("Failed to remove virtual mouse: %v", err)
			}
		}()

		// Give the backend time to pick up the new evdev node
		time.Sleep(injectSettle)

		if err := inj.Run(cmd.Context(), steps); err != nil {
			return err
		}
		logger.Infof("Injected %d step(s)", len(steps))
		return nil
	},
}

func init() {
	debugInjectPointerCmd.Flags().DurationVar(&injectDelay, "delay", 20*time.Millisecond, "Pause between steps")
	debugInjectPointerCmd.Flags().DurationVar(&injectSettle, "settle", 500*time.Millisecond, "Wait after creating the device")

	debugCmd.AddCommand(debugInjectPointerCmd)
}
