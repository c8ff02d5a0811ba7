package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/usecase"
)

var collectFlags struct {
	company       string
	domain        string
	companyDomain string
	asJSON        bool
}

// errDegraded makes a degraded run exit non-zero after its result is printed.
var errDegraded = errors.New("collection degraded")

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection and print the result",
	RunE:  runCollect,
}

func init() {
	f := collectCmd.Flags()
	f.StringVar(&collectFlags.company, "company", "", "Company name (required)")
	f.StringVar(&collectFlags.domain, "domain", "", "Business domain, e.g. medical")
	f.StringVar(&collectFlags.companyDomain, "company-domain", "", "Company web host; derived from the name when empty")
	f.BoolVar(&collectFlags.asJSON, "json", false, "Print the full result as JSON")
	_ = collectCmd.MarkFlagRequired("company")
}

func runCollect(cmd *cobra.Command, _ []string) error {
	application, _, err := newApplication(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()

	result := application.Collect(cmd.Context(), domain.Target{
		Company:       collectFlags.company,
		Domain:        collectFlags.domain,
		CompanyDomain: collectFlags.companyDomain,
	})

	if err := renderResult(cmd.OutOrStdout(), result, collectFlags.asJSON); err != nil {
		return err
	}
	if result.Status == domain.StatusDegraded {
		return errDegraded
	}
	return nil
}

func renderResult(w io.Writer, result domain.CollectionResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	_, err := fmt.Fprintf(w, "run %s\n%s", result.RunID, usecase.BuildVerdictMessage(result))
	return err
}
