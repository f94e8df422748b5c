package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/researcher/internal/config"
	"github.com/nao1215/researcher/internal/database"
	"github.com/nao1215/researcher/internal/model"
	"github.com/nao1215/researcher/internal/report"
	"github.com/spf13/cobra"
)

const (
	defaultHistoryLimit = 20
	maxQuestionColumn   = 60
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and show saved reports",
		Long: `History reads the reports saved by earlier research runs.

Every finished research is stored in the database under
$XDG_DATA_HOME/researcher, including cancelled runs and runs that
produced no report.

Examples:
  # List the 20 newest reports
  researcher history list

  # Show a report by id
  researcher history show 0b6f1c9e-8d1f-4c43-9b7a-1f7f0c7c0f2e

  # Show the newest report for a question as JSON
  researcher history show --question "How do solid-state batteries work?" -f json`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}

			db, err := openHistoryDB()
			if err != nil {
				return err
			}
			defer db.Close()

			return listHistory(cmd.Context(), db, cmd.OutOrStdout(), limit)
		},
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of reports to list (0 lists all)")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [report-id]",
		Short: "Print a saved report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := cmd.Flags().GetString("question")
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			}
			if id == "" && question == "" {
				return errors.New("report id or --question is required (use 'researcher history list' to see ids)")
			}

			db, err := openHistoryDB()
			if err != nil {
				return err
			}
			defer db.Close()

			return showHistory(cmd.Context(), db, cmd.OutOrStdout(), id, question, format)
		},
	}

	cmd.Flags().StringP("question", "q", "",
		"Show the newest report for this question instead of an id")
	cmd.Flags().StringP("format", "f", report.FormatMarkdown,
		"Output format: md, txt or json")

	return cmd
}

func openHistoryDB() (*database.ResearchDB, error) {
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database (run 'researcher research' first): %w", err)
	}
	return db, nil
}

// historyReader is the part of the database the history command reads.
type historyReader interface {
	ListReports(ctx context.Context, limit int) ([]database.ReportRecord, error)
	GetReport(ctx context.Context, id string) (*database.ReportRecord, error)
	LatestReport(ctx context.Context, researchID string) (*database.ReportRecord, error)
}

func listHistory(ctx context.Context, db historyReader, out io.Writer, limit int) error {
	records, err := db.ListReports(orBackground(ctx), limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No saved reports found.")
		fmt.Fprintln(out, "\nUse 'researcher research <question>' to create one.")
		return nil
	}

	fmt.Fprintf(out, "Saved reports (%d):\n\n", len(records))
	fmt.Fprintf(out, "  %-36s  %-19s  %-22s  %s\n", "ID", "Date", "Report Type", "Question")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, rec := range records {
		question := model.TruncateRunes(rec.Question, maxQuestionColumn)
		if rec.Report == "" {
			question += " (no report)"
		}
		fmt.Fprintf(out, "  %-36s  %-19s  %-22s  %s\n",
			rec.ID,
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.ReportType,
			question,
		)
	}

	fmt.Fprintln(out, "\nUse 'researcher history show <id>' to print a report.")
	return nil
}

func showHistory(ctx context.Context, db historyReader, out io.Writer, id, question, format string) error {
	ctx = orBackground(ctx)

	var (
		rec *database.ReportRecord
		err error
	)
	if id != "" {
		rec, err = db.GetReport(ctx, id)
	} else {
		rec, err = db.LatestReport(ctx, model.ResearchID(strings.TrimSpace(question)))
	}
	if err != nil {
		return err
	}
	if rec == nil {
		if id != "" {
			return fmt.Errorf("report %s not found", id)
		}
		return fmt.Errorf("no report found for %q", question)
	}

	r := rec.Research
	if r == nil {
		r = &model.Research{
			ID:         rec.ResearchID,
			Question:   rec.Question,
			Agent:      rec.Agent,
			ReportType: rec.ReportType,
			Report:     rec.Report,
			Visited:    model.NewVisitedSet(),
		}
	}

	w, err := report.NewWriter(format, out, getVersion())
	if err != nil {
		return err
	}
	_, err = w.Write(r)
	return err
}

// orBackground returns ctx, or context.Background when a command runs
// without a context.
func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
