package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/sells-group/underwrite-cli/internal/export"
	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/screening"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Inspect the deal's tracked entities",
	Long:  "Commands for listing entities, trying manual intake and reviewing prior deals.",
}

// -- entities list --

var entitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		query, _ := cmd.Flags().GetString("query")
		flagged, _ := cmd.Flags().GetBool("flagged")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		res := env.Store.List(screening.ListFilter{
			Query:       query,
			OnlyFlagged: flagged,
			Page:        page,
			PerPage:     perPage,
		})
		if res.Total == 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No entities found.")
			return nil
		}

		if err := writeOutput(cmd.OutOrStdout(), export.EntityTable(res.Entities), format, output); err != nil {
			return err
		}
		if output == "" && format == "table" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d entities (page %d)\n", len(res.Entities), res.Total, res.Page)
		}
		return nil
	},
}

// -- entities add --

var entitiesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Validate a manual intake entry",
	Long:  "Runs a manual intake entry through validation, name de-duplication and id assignment against the seed entities. Nothing is persisted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		var in screening.NewEntity
		in.Name, _ = cmd.Flags().GetString("name")
		in.Type, _ = cmd.Flags().GetString("type")
		in.RoleInDeal, _ = cmd.Flags().GetString("role")
		in.OwnershipPct, _ = cmd.Flags().GetString("ownership")
		in.IsGuarantor, _ = cmd.Flags().GetBool("guarantor")

		e, err := env.Store.AddEntity(in)
		if err != nil {
			return err
		}
		formatEntity(cmd.OutOrStdout(), e)
		return nil
	},
}

func formatEntity(out io.Writer, e model.Entity) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID:\t%d\n", e.ID)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", e.Name)
	_, _ = fmt.Fprintf(w, "Type:\t%s\n", e.Type)
	_, _ = fmt.Fprintf(w, "Role:\t%s\n", e.RoleInDeal)
	_, _ = fmt.Fprintf(w, "Ownership:\t%s\n", e.OwnershipPct)
	_, _ = fmt.Fprintf(w, "Guarantor:\t%t\n", e.IsGuarantor)
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", e.Source)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", e.SearchStatus)
	_, _ = fmt.Fprintf(w, "Risk:\t%s\n", e.RiskLevel)
	_ = w.Flush()
}

// -- entities deals --

var entitiesDealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "List prior deals across entities, newest screening first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "cli", clockwork.NewRealClock())
		if err != nil {
			return err
		}
		defer env.Close()

		formatPriorDeals(cmd.OutOrStdout(), env.Store.PriorDeals())
		return nil
	},
}

func formatPriorDeals(out io.Writer, deals []model.PriorDeal) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DEAL\tCLOSED\tSCREENED\tOUTCOME")
	_, _ = fmt.Fprintln(w, "----\t------\t--------\t-------")
	for _, d := range deals {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.DealName, d.CloseDate, d.ScreeningDate, d.OutcomeSummary)
	}
	_ = w.Flush()
}

func init() {
	entitiesListCmd.Flags().String("query", "", "case-insensitive name filter")
	entitiesListCmd.Flags().Bool("flagged", false, "only Medium or High risk entities")
	entitiesListCmd.Flags().Int("page", 0, "zero-based page")
	entitiesListCmd.Flags().Int("per-page", 50, "entities per page")
	entitiesListCmd.Flags().String("format", "table", "output format: table, csv or xlsx")
	entitiesListCmd.Flags().String("output", "", "write to this file instead of stdout")

	entitiesAddCmd.Flags().String("name", "", "entity name (required)")
	entitiesAddCmd.Flags().String("type", "", "entity type, e.g. LLC or Individual (required)")
	entitiesAddCmd.Flags().String("role", "", "role in deal (required unless --guarantor)")
	entitiesAddCmd.Flags().String("ownership", "", "ownership percentage")
	entitiesAddCmd.Flags().Bool("guarantor", false, "entity guarantees the loan")

	entitiesCmd.AddCommand(entitiesListCmd)
	entitiesCmd.AddCommand(entitiesAddCmd)
	entitiesCmd.AddCommand(entitiesDealsCmd)
	rootCmd.AddCommand(entitiesCmd)
}
