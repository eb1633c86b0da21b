package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fastplanner/anvil/pkg/cli"
	"fastplanner/anvil/pkg/config"
	"fastplanner/anvil/pkg/routing"
)

var routesFlags struct {
	format string
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show the proxy route table",
	Long: `Show the route table the proxy would serve with the current configuration.

Each row maps an inbound path prefix to its upstream origin, along with the
fallback content type and whether a path remainder is required.

Examples:
  # Print the routes as text
  anvil routes

  # Print the routes as JSON
  anvil routes --format json

  # Print the routes as CSV
  anvil routes --format csv

  # Show routes with origin overrides from a config file
  anvil routes --config config.yaml`,
	RunE: showRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVar(&routesFlags.format, "format", "text", "output format: text, json, csv")
}

// routeRow is the serializable view of one route table entry.
type routeRow struct {
	Service            string `json:"service"`
	Prefix             string `json:"prefix"`
	UpstreamOrigin     string `json:"upstream_origin"`
	FixedSuffix        string `json:"fixed_suffix,omitempty"`
	DefaultContentType string `json:"default_content_type"`
	RequiresPath       bool   `json:"requires_path"`
}

type routeRows []routeRow

func (routeRows) CSVHeader() []string {
	return []string{"service", "prefix", "upstream_origin", "fixed_suffix", "default_content_type", "requires_path"}
}

func (rows routeRows) CSVRecords() [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Service, r.Prefix, r.UpstreamOrigin, r.FixedSuffix,
			r.DefaultContentType, strconv.FormatBool(r.RequiresPath),
		})
	}
	return records
}

func showRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}

	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{
		NOAA:      cfg.Routes.NOAAOrigin,
		AWC:       cfg.Routes.AWCOrigin,
		Buoy:      cfg.Routes.BuoyOrigin,
		Lightning: cfg.Routes.LightningOrigin,
	}))
	if err != nil {
		return cli.NewConfigError(cfgFile, "routes", err.Error())
	}

	routes := table.Routes()
	rows := make(routeRows, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, routeRow{
			Service:            r.Name,
			Prefix:             r.Prefix,
			UpstreamOrigin:     r.UpstreamOrigin,
			FixedSuffix:        r.FixedSuffix,
			DefaultContentType: r.DefaultContentType,
			RequiresPath:       r.RequiresPath,
		})
	}

	switch cli.OutputFormat(routesFlags.format) {
	case cli.FormatJSON, cli.FormatCSV:
		formatter := cli.NewFormatter(cli.OutputFormat(routesFlags.format))
		return formatter.FormatTo(os.Stdout, rows)
	}

	fmt.Printf("Route table (%d routes):\n\n", len(rows))
	for _, row := range rows {
		target := row.UpstreamOrigin
		if row.FixedSuffix != "" {
			target += row.FixedSuffix
		}
		fmt.Printf("  %-10s %-18s -> %s\n", row.Service, row.Prefix, target)
		fmt.Printf("             default content type: %s", row.DefaultContentType)
		if !row.RequiresPath {
			fmt.Printf(", path remainder ignored")
		}
		fmt.Println()
	}
	return nil
}
