package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	eansearch "github.com/eansearch/eansearch-go"
	domain "github.com/eansearch/eansearch-go/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printProductTable(products []eansearch.Product) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("EAN\tNAME\tCATEGORY\tCOUNTRY\n")
	for i := range products {
		tw.writef("%s\t%s\t%s\t%s\n",
			products[i].EAN,
			truncate(products[i].Name, 50),
			products[i].CategoryName,
			products[i].IssuingCountry,
		)
	}
	return tw.finish()
}

func printProductDetail(p *eansearch.Product) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("EAN:\t%s\n", p.EAN)
	tw.writef("Name:\t%s\n", p.Name)
	tw.writef("Category:\t%s (%s)\n", p.CategoryName, p.CategoryID)
	tw.writef("Country:\t%s\n", p.IssuingCountry)
	return tw.finish()
}

func printWatchTable(watches []domain.Watch) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tBARCODE\tLABEL\tTHRESHOLD\tTRACKS\tENABLED\n")
	for i := range watches {
		tw.writef("%s\t%s\t%s\t%d\t%s\t%v\n",
			watches[i].ID,
			watches[i].Barcode,
			watches[i].Label,
			watches[i].QualityThreshold,
			trackedFields(&watches[i]),
			watches[i].Enabled,
		)
	}
	return tw.finish()
}

func printWatchDetail(w *domain.Watch) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", w.ID)
	tw.writef("Barcode:\t%s\n", w.Barcode)
	tw.writef("Label:\t%s\n", w.Label)
	tw.writef("Language:\t%d\n", w.Language)
	tw.writef("Threshold:\t%d\n", w.QualityThreshold)
	tw.writef("Tracks:\t%s\n", trackedFields(w))
	tw.writef("Enabled:\t%v\n", w.Enabled)
	if w.LastCheckedAt != nil {
		tw.writef("Last Checked:\t%s\n", w.LastCheckedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.finish()
}

func trackedFields(w *domain.Watch) string {
	if len(w.ChangeFields) == 0 {
		return "all"
	}
	fields := make([]string, len(w.ChangeFields))
	for i, f := range w.ChangeFields {
		fields[i] = string(f)
	}
	return strings.Join(fields, ",")
}

func printSnapshotTable(snapshots []domain.Snapshot) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tBARCODE\tNAME\tQUALITY\tCHANGED\tFETCHED\n")
	for i := range snapshots {
		s := &snapshots[i]
		changed := "-"
		if len(s.ChangedFields) > 0 {
			fields := make([]string, len(s.ChangedFields))
			for j, f := range s.ChangedFields {
				fields[j] = string(f)
			}
			changed = strings.Join(fields, ",")
		}
		tw.writef("%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID,
			s.Barcode,
			truncate(s.Name, 40),
			s.Quality,
			changed,
			s.FetchedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return tw.finish()
}

func printSnapshotDetail(s *domain.Snapshot) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", s.ID)
	tw.writef("Watch:\t%s\n", s.WatchID)
	tw.writef("Barcode:\t%s\n", s.Barcode)
	tw.writef("Name:\t%s\n", s.Name)
	tw.writef("Category:\t%s (%s)\n", s.CategoryName, s.CategoryID)
	tw.writef("Country:\t%s\n", s.IssuingCountry)
	tw.writef("Quality:\t%d/100\n", s.Quality)
	if len(s.ChangedFields) > 0 {
		fields := make([]string, len(s.ChangedFields))
		for i, f := range s.ChangedFields {
			fields[i] = string(f)
		}
		tw.writef("Changed:\t%s\n", strings.Join(fields, ","))
	}
	tw.writef("Fetched:\t%s\n", s.FetchedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printJobRunsTable(runs []domain.JobRun) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tROWS\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format("2006-01-02 15:04:05")
		}
		rows := "-"
		if r.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *r.RowsAffected)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			completed,
			rows,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
