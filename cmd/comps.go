package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/sells-group/underwrite-cli/internal/comps"
	"github.com/sells-group/underwrite-cli/internal/export"
	"github.com/sells-group/underwrite-cli/internal/model"
)

var compsCmd = &cobra.Command{
	Use:   "comps",
	Short: "Rank and export comparables",
	Long:  "Commands for filtering sale and rent comparables and scoring sale comps against the subject property.",
}

// compFilter builds the filter from flags. --months falls back to the
// configured default; 0 disables the recency filter.
func compFilter(cmd *cobra.Command, defaultMonths int) comps.Filter {
	market, _ := cmd.Flags().GetString("market")
	maxDist, _ := cmd.Flags().GetFloat64("max-distance")
	months, _ := cmd.Flags().GetInt("months")

	f := comps.Filter{Market: market, RecencyMonths: defaultMonths}
	if cmd.Flags().Changed("months") {
		f.RecencyMonths = months
	}
	if maxDist > 0 {
		f.MaxDistance = model.Float(maxDist)
	}
	return f
}

func addCompFlags(cmd *cobra.Command) {
	cmd.Flags().String("market", comps.MarketAll, "market to include (All for every market)")
	cmd.Flags().Float64("max-distance", 0, "maximum distance from the subject in miles (0 = any)")
	cmd.Flags().Int("months", 0, "recency window in months (default from config, 0 = any date)")
	cmd.Flags().String("format", "table", "output format: table, csv or xlsx")
	cmd.Flags().String("output", "", "write to this file instead of stdout")
}

// -- comps sales --

var compsSalesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Rank sale comps by similarity to the subject",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		rows := env.Comps.Sales(compFilter(cmd, cfg.Comps.DefaultMonths))
		return writeOutput(cmd.OutOrStdout(), export.SalesTable(rows), format, output)
	},
}

// -- comps rent --

var compsRentCmd = &cobra.Command{
	Use:   "rent",
	Short: "List rent comps passing the filter",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		rents := env.Comps.Rent(compFilter(cmd, cfg.Comps.DefaultMonths))
		return writeOutput(cmd.OutOrStdout(), export.RentTable(rents), format, output)
	},
}

// -- comps filters --

var compsFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the available market, distance and recency choices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		formatFilterOptions(cmd.OutOrStdout(), env.Comps.Options())
		return nil
	},
}

func formatFilterOptions(out io.Writer, opts comps.Options) {
	dists := make([]string, len(opts.Distances))
	for i, d := range opts.Distances {
		dists[i] = fmt.Sprintf("%g mi", d)
	}
	months := make([]string, len(opts.Months))
	for i, m := range opts.Months {
		months[i] = fmt.Sprintf("%d mo", m)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Markets:\t%s\n", strings.Join(opts.Markets, ", "))
	_, _ = fmt.Fprintf(w, "Distances:\t%s\n", strings.Join(dists, ", "))
	_, _ = fmt.Fprintf(w, "Recency:\t%s\n", strings.Join(months, ", "))
	_ = w.Flush()
}

func init() {
	addCompFlags(compsSalesCmd)
	addCompFlags(compsRentCmd)

	compsCmd.AddCommand(compsSalesCmd)
	compsCmd.AddCommand(compsRentCmd)
	compsCmd.AddCommand(compsFiltersCmd)
	rootCmd.AddCommand(compsCmd)
}
