package results

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/shotgrid/internal/model"
)

// Report formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted report formats.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown}

// Report is the complete, serializable outcome of one run.
type Report struct {
	RunID      string                   `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	DurationMS int64                    `json:"duration_ms"`
	Summary    Summary                  `json:"summary"`
	Results    []model.CaptureResult    `json:"results"`
	Issues     []model.DataQualityIssue `json:"data_quality_issues,omitempty"`
}

// Report snapshots the aggregator into a Report.
func (a *Aggregator) Report(runID string, startedAt, finishedAt time.Time) Report {
	return Report{
		RunID:      runID,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		DurationMS: finishedAt.Sub(startedAt).Milliseconds(),
		Summary:    a.Summary(),
		Results:    a.Results(),
		Issues:     a.Issues(),
	}
}

// Write renders r in the given format.
func Write(w io.Writer, format string, r Report) error {
	switch format {
	case FormatText, "":
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatMarkdown:
		return WriteMarkdown(w, r)
	default:
		return fmt.Errorf("unknown report format %q: must be one of %s", format, strings.Join(Formats, ", "))
	}
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the run summary and every failure with its identifying
// triple and failure kind.
func WriteText(w io.Writer, r Report) error {
	s := r.Summary
	fmt.Fprintf(w, "Run %s: %d cases, %d passed, %d failed, %d skipped in %s\n",
		r.RunID, s.Total, s.Passed, s.Failed, s.Skipped, time.Duration(r.DurationMS)*time.Millisecond)
	if s.Total == 0 {
		fmt.Fprintln(w, "No components found.")
	}
	if len(r.Issues) > 0 {
		fmt.Fprintf(w, "\nData-quality warnings (%d):\n", len(r.Issues))
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "  - %s\n", issue.Error())
		}
	}

	var failed, skipped []model.CaptureResult
	for _, res := range r.Results {
		switch res.Outcome.Kind {
		case model.Failed:
			failed = append(failed, res)
		case model.Skipped:
			skipped = append(skipped, res)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "\nFailures (%d):\n", len(failed))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  BROWSER\tVIEWPORT\tCOMPONENT\tFAILURE\tDETAIL")
		for _, res := range failed {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				res.Case.Browser.Name, res.Case.Viewport.Name, componentLabel(res.Case), res.Outcome.Failure, res.Outcome.Reason)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped (%d):\n", len(skipped))
		for _, res := range skipped {
			fmt.Fprintf(w, "  - %s: %s\n", res.Case.Key(), res.Outcome.Reason)
		}
	}
	return nil
}

// WriteMarkdown renders a summary line and a table of every case, suitable
// for a pull request comment.
func WriteMarkdown(w io.Writer, r Report) error {
	s := r.Summary
	fmt.Fprintf(w, "## Visual regression run `%s`\n\n", r.RunID)
	fmt.Fprintf(w, "**%d** cases: **%d** passed, **%d** failed, **%d** skipped.\n\n", s.Total, s.Passed, s.Failed, s.Skipped)
	if len(r.Results) == 0 {
		_, err := fmt.Fprintln(w, "_No components found._")
		return err
	}
	fmt.Fprintln(w, "| Browser | Viewport | Component | Outcome | Detail |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, res := range r.Results {
		outcome := res.Outcome.Kind.String()
		if res.Outcome.Kind == model.Failed {
			outcome = fmt.Sprintf("failed (%s)", res.Outcome.Failure)
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			res.Case.Browser.Name, res.Case.Viewport.String(), mdEscape(componentLabel(res.Case)), outcome, mdEscape(res.Outcome.Reason))
	}
	if len(r.Issues) > 0 {
		fmt.Fprintf(w, "\n<details><summary>%d data-quality warnings</summary>\n\n", len(r.Issues))
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "- %s\n", mdEscape(issue.Error()))
		}
		fmt.Fprintln(w, "\n</details>")
	}
	return nil
}

func componentLabel(tc model.TestCase) string {
	if tc.Occurrence == 0 {
		return tc.Component.Name
	}
	return fmt.Sprintf("%s#%d", tc.Component.Name, tc.Occurrence)
}

func mdEscape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
