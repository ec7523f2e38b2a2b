package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mkarren/gush/core/config"
	"github.com/mkarren/gush/core/logger"
	"github.com/mkarren/gush/core/shell"
)

var cfgPath string

// exitStatus carries the last pipeline's status out of the root command so
// the process can exit with it.
var exitStatus int

// rootCmd starts the interactive shell when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gush",
	Short: "An interactive POSIX-style command shell",
	Long: `gush reads command lines, runs each as a pipeline of child processes
wired together by anonymous pipes, and forwards terminal interrupts to the
running foreground group.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(afero.NewOsFs(), cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		var lg *logger.Logger
		if cfg.EventLog != "" {
			fd, err := os.OpenFile(cfg.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return err
			}
			defer fd.Close()
			lg = logger.NewJsonLinesLogRecorder(fd)
		}

		sh := shell.New(cfg, lg, os.Stdin, os.Stdout, os.Stderr)
		exitStatus = sh.Run()
		return nil
	},
}

// Execute runs the root command and returns the process exit status: the
// status of the last executed pipeline, or 1 on a startup error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitStatus
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")
}
