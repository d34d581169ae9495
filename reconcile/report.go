package reconcile

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

// LaneReportRow is one emitted lane in the lane report.
type LaneReportRow struct {
	Project             string `csv:"project"`
	IdentityKey         string `csv:"identityKey"`
	GSID                string `csv:"GS_ID"`
	Barcodes            string `csv:"barcodes"`
	Flowcell            string `csv:"flowcell"`
	Lane                string `csv:"lane"`
	Sequencer           string `csv:"sequencer"`
	Run                 string `csv:"run"`
	SequencingStartDate string `csv:"sequencingStartDate"`
	Resolved            bool   `csv:"resolved"`
	Output              string `csv:"output"`
}

// LaneReport lists every emitted lane, project by project, in output order.
func (e *Engine) LaneReport(expansions []*Expansion) []*LaneReportRow {
	rows := make([]*LaneReportRow, 0)
	for _, exp := range expansions {
		output := e.outputPath(exp.Project)
		for _, em := range exp.Emissions {
			rows = append(rows, &LaneReportRow{
				Project:             exp.Project,
				IdentityKey:         em.Sample.IdentityKey,
				GSID:                em.Sample.VendorID,
				Barcodes:            em.Lane.Barcodes,
				Flowcell:            em.Lane.Flowcell,
				Lane:                em.Lane.Lane,
				Sequencer:           em.Lane.Sequencer.String,
				Run:                 em.Lane.Run.String,
				SequencingStartDate: em.Lane.StartDate.String,
				Resolved:            em.Lane.Resolved(),
				Output:              output,
			})
		}
	}

	return rows
}

// renderLaneReport writes the report as tab-delimited text with a header.
func renderLaneReport(rows []*LaneReportRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	w.Comma = '\t'

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return nil, pfx.Err(err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, pfx.Err(err)
	}

	return buf.Bytes(), nil
}

func (e *Engine) writeLaneReport(ctx context.Context, expansions []*Expansion) error {
	data, err := renderLaneReport(e.LaneReport(expansions))
	if err != nil {
		return err
	}

	e.logger.Info("Writing lane report", zap.String("path", e.cfg.LaneReport))

	return gsmerge.WriteFile(ctx, e.client, e.cfg.LaneReport, data)
}
