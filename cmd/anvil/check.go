package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fastplanner/anvil/pkg/cli"
	"fastplanner/anvil/pkg/config"
	"fastplanner/anvil/pkg/routing"
	"fastplanner/anvil/pkg/upstream"
)

var checkFlags struct {
	probe   bool
	timeout time.Duration
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and test upstream reachability",
	Long: `Validate the configuration file and optionally probe the upstream origins.

Without flags the command loads the configuration, applies defaults, and
reports validation errors without starting a server. With --probe it also
issues one request per upstream origin through the forwarder and reports
whether the origin answered.

Examples:
  # Validate the config file
  anvil check --config config.yaml

  # Validate and probe all upstream origins
  anvil check --config config.yaml --probe

  # Probe with a short timeout
  anvil check --probe --timeout 5s`,
	RunE: checkConfig,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkFlags.probe, "probe", false, "probe upstream origins for reachability")
	checkCmd.Flags().DurationVar(&checkFlags.timeout, "timeout", 10*time.Second, "per-origin probe timeout")
}

func checkConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}

	if cfgFile != "" {
		fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	} else {
		fmt.Println("✓ Built-in default configuration valid")
	}
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress())
	fmt.Printf("  rate limit: %d requests per %ds window\n",
		*cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSeconds)
	fmt.Printf("  forward timeout: %s\n", cfg.Forwarder.Timeout)

	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{
		NOAA:      cfg.Routes.NOAAOrigin,
		AWC:       cfg.Routes.AWCOrigin,
		Buoy:      cfg.Routes.BuoyOrigin,
		Lightning: cfg.Routes.LightningOrigin,
	}))
	if err != nil {
		return cli.NewConfigError(cfgFile, "routes", err.Error())
	}
	fmt.Printf("  routes: %d configured\n", len(table.Routes()))

	if !checkFlags.probe {
		return nil
	}

	fmt.Println("\nProbing upstream origins...")

	forwarder := upstream.New(upstream.Config{
		Timeout:          checkFlags.timeout,
		MaxResponseBytes: cfg.Forwarder.MaxResponseBytes,
	})

	// The lightning route shares the NOAA origin by default; probe each
	// distinct origin once.
	type probe struct {
		services []string
		origin   string
	}
	seen := make(map[string]int)
	var probes []probe
	for _, r := range table.Routes() {
		if i, ok := seen[r.UpstreamOrigin]; ok {
			probes[i].services = append(probes[i].services, r.Name)
			continue
		}
		seen[r.UpstreamOrigin] = len(probes)
		probes = append(probes, probe{services: []string{r.Name}, origin: r.UpstreamOrigin})
	}

	reporter := cli.NewProgressReporter(nil)
	reporter.Start(int64(len(probes)))

	failures := 0
	results := make([]string, 0, len(probes))
	for i, p := range probes {
		result := forwarder.Forward(cmd.Context(), p.origin+"/")
		switch result.Outcome {
		case upstream.OutcomeSuccess:
			results = append(results, fmt.Sprintf("✓ %s (%v): HTTP %d in %s",
				p.origin, p.services, result.StatusCode, result.Duration.Round(time.Millisecond)))
		case upstream.OutcomeTimeout:
			failures++
			results = append(results, fmt.Sprintf("✗ %s (%v): timed out after %s",
				p.origin, p.services, checkFlags.timeout))
		default:
			failures++
			results = append(results, fmt.Sprintf("✗ %s (%v): %v", p.origin, p.services, result.Err))
		}
		reporter.Update(int64(i + 1))
	}
	reporter.Finish()

	fmt.Println()
	for _, line := range results {
		fmt.Println(line)
	}

	if failures > 0 {
		return cli.NewCommandError("check", fmt.Errorf("%d of %d origins unreachable", failures, len(probes)))
	}
	fmt.Printf("\n✓ All %d origins reachable\n", len(probes))
	return nil
}
