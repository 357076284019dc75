package main

import (
	"fmt"
	"os"

	"github.com/OCAP2/spacetime/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// module defs - Version and BuildDate can be set at build time via ldflags
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"

	AppName string = "spacetime"
)

var (
	configDir string

	rootCmd = &cobra.Command{
		Use:   "spacetime",
		Short: "A sliding-window spatio-temporal entity index",
		Long: `spacetime keeps the most recent time slices of a 3D entity lattice in
memory and answers location, history and relative placement queries
through a line-oriented command shell on stdin.`,
		SilenceUsage: true,
		RunE:         runShell,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version and build date",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s)\n", AppName, Version, BuildDate)
		},
	}
)

// flagBindings maps command line flags to config keys.
var flagBindings = map[string]string{
	"capacity":     "index.capacity",
	"space-res":    "index.spaceResolution",
	"time-res":     "index.timeResolution",
	"autostep":     "index.autoStep",
	"log-level":    "logLevel",
	"async-writes": "shell.asyncWrites",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing "+config.FileName)

	flags := rootCmd.Flags()
	flags.Int("capacity", 64, "number of time slices retained")
	flags.Float64("space-res", 0.1, "edge length of one lattice cell")
	flags.Duration("time-res", 0, "time between consecutive slices")
	flags.Bool("autostep", false, "advance the window automatically once per time resolution")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Int("async-writes", 0, "queue mutating commands on a buffer of this size (0 runs them inline)")

	for flag, key := range flagBindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
