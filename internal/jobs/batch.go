package jobs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"duedate/internal/logging"
	"duedate/internal/metrics"
	"duedate/internal/schedule"
	"duedate/internal/util"
)

// OutputHeader is the first row RunBatch writes.
var OutputHeader = []string{"submit", "turnaround", "due", "error"}

// Summary counts processed and failed rows.
type Summary struct {
	Rows   int
	Failed int
}

// RunBatch reads "submit,turnaround" CSV rows from r and writes one
// "submit,turnaround,due,error" row per input row to w. Rows that fail validation
// are reported in the error column and do not stop the run. Blank lines, lines
// starting with '#' and a leading "submit,turnaround" header are skipped.
// Submit values without a zone are read in loc.
func RunBatch(ctx context.Context, calc *schedule.Calculator, r io.Reader, w io.Writer, layout string, loc *time.Location) (Summary, error) {
	var sum Summary
	if layout == "" {
		layout = schedule.Layout
	}
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cw := csv.NewWriter(w)
	if err := cw.Write(OutputHeader); err != nil {
		return sum, err
	}

	first := true
	for {
		if err := ctx.Err(); err != nil {
			cw.Flush()
			return sum, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cw.Flush()
			return sum, fmt.Errorf("read batch input: %w", err)
		}
		if first {
			first = false
			if util.EqualFoldAll(rec, "submit", "turnaround") {
				continue
			}
		}
		line, _ := cr.FieldPos(0)

		sum.Rows++
		out, err := processRow(calc, rec, layout, loc)
		if err != nil {
			sum.Failed++
			metrics.ObserveError(err)
			logging.Error("batch_row_error", map[string]any{"line": line, "error": err.Error()})
		}
		if err := cw.Write(out); err != nil {
			return sum, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return sum, err
	}
	logging.Info("batch_done", map[string]any{"rows": sum.Rows, "failed": sum.Failed})
	return sum, nil
}

func processRow(calc *schedule.Calculator, rec []string, layout string, loc *time.Location) ([]string, error) {
	out := make([]string, len(OutputHeader))
	for i := 0; i < len(rec) && i < 2; i++ {
		out[i] = strings.TrimSpace(rec[i])
	}
	fail := func(err error) ([]string, error) {
		out[3] = err.Error()
		return out, err
	}
	if len(rec) != 2 {
		return fail(fmt.Errorf("expected 2 fields, got %d", len(rec)))
	}
	submit, err := schedule.ParseSubmit(rec[0], loc)
	if err != nil {
		return fail(err)
	}
	turnaround, err := schedule.ParseTurnaround(rec[1])
	if err != nil {
		return fail(err)
	}
	start := time.Now()
	due, err := calc.DueDate(submit, turnaround)
	metrics.ObserveDuration(start)
	if err != nil {
		return fail(err)
	}
	out[2] = due.Format(layout)
	return out, nil
}
