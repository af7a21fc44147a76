package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/db"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	defaultReportLimit = 20
)

var errNoInterviews = errors.New("no saved interviews")

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse saved interview reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved interviews, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, limit, err := reportFlags(cmd)
		if err != nil {
			return err
		}
		cfg, log, err := setup(false)
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		interviews, err := store.Interviews(limit)
		if err != nil {
			return fmt.Errorf("list interviews: %w", err)
		}
		return writeInterviews(cmd.OutOrStdout(), interviews, format)
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one interview report. Without an id, pick one from a list.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, limit, err := reportFlags(cmd)
		if err != nil {
			return err
		}
		cfg, log, err := setup(false)
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			interviews, err := store.Interviews(limit)
			if err != nil {
				return fmt.Errorf("list interviews: %w", err)
			}
			if id, err = pickInterview(interviews); err != nil {
				return err
			}
		}

		iv, err := store.Interview(id)
		switch {
		case errors.Is(err, db.ErrAmbiguousID):
			return fmt.Errorf("id %q matches more than one interview", id)
		case err != nil:
			return fmt.Errorf("get interview: %w", err)
		case iv == nil:
			return fmt.Errorf("interview %q not found", id)
		}
		return writeInterview(cmd.OutOrStdout(), iv, format)
	},
}

func init() {
	for _, c := range []*cobra.Command{reportsListCmd, reportsShowCmd} {
		c.Flags().StringP("format", "o", FormatText, "output format: text, json or yaml")
		c.Flags().IntP("limit", "n", defaultReportLimit, "maximum number of interviews to list")
		reportsCmd.AddCommand(c)
	}
	rootCmd.AddCommand(reportsCmd)
}

func reportFlags(cmd *cobra.Command) (string, int, error) {
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")
	switch format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return "", 0, fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
	return format, limit, nil
}

// pickInterview asks which interview to show.
func pickInterview(interviews []db.Interview) (string, error) {
	if len(interviews) == 0 {
		return "", errNoInterviews
	}
	items := make([]string, len(interviews))
	for i := range interviews {
		items[i] = summaryLine(&interviews[i])
	}

	prompt := promptui.Select{
		Label: "Choose an interview and press ENTER",
		Items: items,
		Size:  10,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return interviews[idx].ID, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func summaryLine(iv *db.Interview) string {
	return fmt.Sprintf("%-8s  %s  %3.0f/100  %s",
		shortID(iv.ID),
		iv.CompletedAt.Local().Format("2006-01-02 15:04"),
		iv.Report.OverallScore,
		iv.Report.HireRecommendation)
}

func writeInterviews(w io.Writer, interviews []db.Interview, format string) error {
	if interviews == nil {
		interviews = []db.Interview{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, interviews)
	case FormatYAML:
		return writeYAML(w, interviews)
	}

	if len(interviews) == 0 {
		_, err := fmt.Fprintln(w, "No saved interviews.")
		return err
	}
	for i := range interviews {
		if _, err := fmt.Fprintln(w, summaryLine(&interviews[i])); err != nil {
			return err
		}
	}
	return nil
}

func writeInterview(w io.Writer, iv *db.Interview, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, iv)
	case FormatYAML:
		return writeYAML(w, iv)
	}

	var b strings.Builder
	r := iv.Report
	fmt.Fprintf(&b, "Interview %s\n", iv.ID)
	if iv.ResumeName != "" {
		fmt.Fprintf(&b, "Resume:         %s\n", iv.ResumeName)
	}
	fmt.Fprintf(&b, "Completed:      %s\n", iv.CompletedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Overall score:  %.0f/100\n", r.OverallScore)
	fmt.Fprintf(&b, "Recommendation: %s\n", r.HireRecommendation)
	section(&b, "Summary", r.Summary)
	section(&b, "Strong Areas", r.StrongAreas)
	section(&b, "Areas to Improve", r.WeakAreas)
	section(&b, "Improvement Roadmap", r.ImprovementRoadmap)

	for _, a := range iv.Answers {
		e := a.Evaluation
		fmt.Fprintf(&b, "\nQ%d. %s\n", a.SequenceNumber, a.Question)
		fmt.Fprintf(&b, "  Answer: %s\n", a.Answer)
		fmt.Fprintf(&b, "  Technical %g  Clarity %g  Structure %g  Relevance %g\n",
			e.TechnicalScore, e.ClarityScore, e.StructureScore, e.RelevanceScore)
		if e.Strengths != "" {
			fmt.Fprintf(&b, "  Strengths: %s\n", e.Strengths)
		}
		if e.Weaknesses != "" {
			fmt.Fprintf(&b, "  Weaknesses: %s\n", e.Weaknesses)
		}
		if e.ImprovementTip != "" {
			fmt.Fprintf(&b, "  Tip: %s\n", e.ImprovementTip)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "\n%s\n  %s\n", title, text)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
