package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"legal-backend/internal/classify"
	"legal-backend/internal/upstream"
)

const (
	formatJSON   = "json"
	formatReport = "report"
)

var errNoInput = errors.New("no input")

type riskOutput struct {
	Outcome classify.Outcome   `json:"outcome"`
	Stats   classify.RiskStats `json:"stats"`
	Risks   []classify.Risk    `json:"risks"`
}

type summaryOutput struct {
	Outcome  classify.Outcome   `json:"outcome"`
	Sections []classify.Section `json:"sections"`
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "legalctl",
		Short:         "Classify legal analysis text into risk and summary records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRisksCmd(), newSummaryCmd(), newFallbackCmd(), newStatsCmd())
	return cmd
}

func newRisksCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "risks [file]",
		Short: "Turn a risk narrative into risk records",
		Long:  "Reads a risk narrative from the file, or from stdin when no file or \"-\" is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatReport {
				return fmt.Errorf("invalid format %q (want %s or %s)", format, formatJSON, formatReport)
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			risks, outcome := classify.ParseRisks(text)
			if format == formatReport {
				return writeReport(cmd.OutOrStdout(), risks)
			}
			return writeJSON(cmd.OutOrStdout(), riskOutput{
				Outcome: outcome,
				Stats:   classify.Tally(risks),
				Risks:   risks,
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format (json, report)")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Turn a summary into section records",
		Long: "Reads a JSON object of heading to body pairs, or a plain narrative, " +
			"from the file or from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var out summaryOutput
			if inputs, ok := headingObject(text); ok {
				out.Sections, out.Outcome = classify.ClassifySections(inputs)
			} else {
				out.Sections, out.Outcome = classify.SectionsFromNarrative(text)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newFallbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "fallback risks|summary",
		Short:     "Print the demo record set",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"risks", "summary"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "risks" {
				risks := classify.FallbackRisks()
				return writeJSON(cmd.OutOrStdout(), riskOutput{
					Outcome: classify.OutcomeFallback,
					Stats:   classify.Tally(risks),
					Risks:   risks,
				})
			}
			return writeJSON(cmd.OutOrStdout(), summaryOutput{
				Outcome:  classify.OutcomeFallback,
				Sections: classify.FallbackSections(),
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Count the risks of a narrative per severity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			risks, _ := classify.ParseRisks(text)
			return writeJSON(cmd.OutOrStdout(), classify.Tally(risks))
		},
	}
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errNoInput
	}
	return string(data), nil
}

// headingObject reads text as a JSON object of heading to body, keeping the
// key order and flattening list bodies as the API does.
func headingObject(text string) ([]classify.SectionInput, bool) {
	entries, err := upstream.DecodeEntries([]byte(text))
	if err != nil {
		return nil, false
	}
	inputs := make([]classify.SectionInput, 0, len(entries))
	for _, e := range entries {
		inputs = append(inputs, classify.SectionInput{Heading: e.Key, Body: e.Value})
	}
	return inputs, true
}

func writeReport(w io.Writer, risks []classify.Risk) error {
	parts := make([]string, 0, len(risks))
	for _, r := range risks {
		parts = append(parts, r.Report())
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "\n\n"+strings.Repeat("-", 40)+"\n\n"))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
