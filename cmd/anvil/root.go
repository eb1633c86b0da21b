package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "anvil",
	Short: "Anvil - CORS-enabling weather data proxy",
	Long: `Anvil is a stateless reverse proxy in front of public aviation and
marine weather providers.

The upstream services (nowCOAST, the Aviation Weather Center, the National
Data Buoy Center, and lightning detection) don't send cross-origin headers,
so browser clients can't call them directly. Anvil re-exposes them under
uniform /api/<service>/ paths with permissive CORS headers, a per-client
sliding-window rate limit, and bounded upstream timeouts.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional; defaults apply without one)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
