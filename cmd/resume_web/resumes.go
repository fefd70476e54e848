package main

import (
	"fmt"

	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/observability"
	"github.com/spf13/cobra"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "List parsed resumes",
	Long: `Fetch the resumes visible to the signed-in user, optionally filter them on
candidate_name or email_id, and print the table. --show prints the detail of one
row of the filtered table.`,
	RunE: runResumes,
}

var (
	resumesToken string
	resumesFacet string
	resumesValue string
	resumesShow  int
)

func init() {
	resumesCmd.Flags().StringVar(&resumesToken, "token", "", "Session token (defaults to SESSION_TOKEN)")
	resumesCmd.Flags().StringVar(&resumesFacet, "facet", "", "Field to filter on: candidate_name or email_id")
	resumesCmd.Flags().StringVar(&resumesValue, "value", "", "Case-insensitive substring to match")
	resumesCmd.Flags().IntVar(&resumesShow, "show", -1, "Row of the filtered table to show in detail")

	rootCmd.AddCommand(resumesCmd)
}

func runResumes(cmd *cobra.Command, _ []string) error {
	facet := dashboard.ParseFacet(resumesFacet)
	if resumesFacet != "" && facet == dashboard.FacetNone {
		return fmt.Errorf("unknown facet %q (use candidate_name or email_id)", resumesFacet)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := identityFromToken(resumesToken, &cfg.Session)
	if err != nil {
		return err
	}
	client, err := newParserClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create parser API client: %w", err)
	}

	admins := cfg.AdminUserIDs
	if len(admins) == 0 {
		admins = []string{dashboard.LegacyAdminUserID}
	}

	v := dashboard.NewView("cli", id.UserID, dashboard.NewAuthorizer(admins).IsAdmin(id))
	loadErr := v.Load(cmd.Context(), client)

	v.SetFacet(facet)
	v.SetFacetValue(resumesValue)
	snap := v.Snapshot()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintResumeTable(observability.ResumeTable{
		Records:    snap.Displayed,
		Total:      snap.FullCount,
		FacetLabel: snap.Facet.Label(),
		Value:      snap.Value,
		Err:        snap.Err,
	})
	if loadErr != nil {
		return fmt.Errorf("%s", snap.Err)
	}

	if facet != dashboard.FacetNone && resumesValue == "" {
		printer.PrintFacets(facet.Label(), snap.Options)
	}

	if resumesShow >= 0 {
		if err := v.Select(resumesShow); err != nil {
			return fmt.Errorf("row %d: %w", resumesShow, err)
		}
		printer.PrintResumeDetail(v.Snapshot().Selected)
	}
	return nil
}
