package cmd

import (
	"github.com/bnema/twm/internal/config"
	"github.com/bnema/twm/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configFile string

	rootCmd = &cobra.Command{
		Use:   "twm [command...]",
		Short: "twm - a small stacking Wayland window manager",
		Long: `twm is a stacking window manager core. It runs nested inside a terminal
or directly on a framebuffer console, maps windows on a single output and
starts the given command (or the configured terminal) once it is up.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runCompositor,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	// Everything after the first positional argument belongs to the command
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/twm/twm.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("socket", "", "Control socket path")
	rootCmd.Flags().StringP("backend", "b", "", "Backend: auto, nested or tty")

	// Bind flags to viper
	viper.BindPFlag("logging.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("ipc.socket_path", rootCmd.PersistentFlags().Lookup("socket"))
	viper.BindPFlag("backend.kind", rootCmd.Flags().Lookup("backend"))

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ctlCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	config.SetConfigPath(configFile)
	if err := config.Init(); err != nil {
		return err
	}
	if level := config.Get().Logging.LogLevel; level != "" {
		logger.SetLevel(level)
	}
	return nil
}
