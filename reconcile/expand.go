package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/lanes"
	"github.com/carbocation/gsmerge/pattern"
	"github.com/carbocation/gsmerge/table"
	"github.com/carbocation/gsmerge/vendorsheet"
)

// Columns of the in-house samplesheet that are overwritten with the run
// coordinates of each lane, when present.
const (
	ColumnLane                = "lane"
	ColumnSequencer           = "sequencer"
	ColumnRun                 = "run"
	ColumnFlowcell            = "flowcell"
	ColumnSequencingStartDate = "sequencingStartDate"
)

// Columns that are added to the in-house samplesheet if missing.
const (
	ColumnBarcode           = "barcode"
	ColumnBarcode1          = "barcode1"
	ColumnBarcode2          = "barcode2"
	ColumnGSID              = "GS_ID"
	ColumnGSBatch           = "gsBatch"
	ColumnGSBatchFolderName = "gsBatchFolderName"
)

// OutputColumns are the columns every complete samplesheet has, on top of the
// columns of the in-house samplesheet it was made from.
func OutputColumns(batchScoped bool) []string {
	columns := []string{ColumnBarcode, ColumnBarcode1, ColumnBarcode2, ColumnGSID}
	if batchScoped {
		columns = append(columns, ColumnGSBatch, ColumnGSBatchFolderName)
	}

	return columns
}

// Emission records which vendor lane an output row was made for.
type Emission struct {
	Sample *vendorsheet.VendorSample
	Lane   lanes.LaneRecord
}

// Expansion is the complete samplesheet of one project, before it is written.
type Expansion struct {
	Project string
	Sheet   *table.Table

	// Emissions has one entry per row of Sheet, in the same order.
	Emissions []Emission

	// LanesPerSample has one entry per in-house sample.
	LanesPerSample []float64
}

// ValidateCardinality checks that the in-house samplesheet of a project has as
// many samples as the GenomeScan samplesheet has for that project, and that it
// does not mention projects the GenomeScan samplesheet lacks.
func ValidateCardinality(project string, internal *table.Table, ix *vendorsheet.Index) error {
	if expected, actual := ix.ProjectCount(project), internal.Len(); expected != actual {
		return fmt.Errorf("%w: number of samples in GS samplesheet (%d) is NOT the same as in inhouse samplesheet (%d) for project %s",
			gsmerge.ErrConsistency, expected, actual, project)
	}

	if !internal.Has(vendorsheet.InternalProject) {
		return fmt.Errorf("%w: in-house samplesheet of project %s has no %s column", gsmerge.ErrFormat, project, vendorsheet.InternalProject)
	}

	perProject := make(map[string]int)
	for i := range internal.Rows {
		rowProject, _ := internal.Get(i, vendorsheet.InternalProject)
		perProject[strings.TrimSpace(rowProject)]++
	}

	mentioned := make([]string, 0, len(perProject))
	for p := range perProject {
		mentioned = append(mentioned, p)
	}
	sort.Strings(mentioned)

	for _, p := range mentioned {
		if ix.ProjectCount(p) == 0 {
			return fmt.Errorf("%w: number of samples in GS samplesheet (0) is NOT the same as in inhouse samplesheet (%d) for project %s, which the inhouse samplesheet of project %s mentions",
				gsmerge.ErrConsistency, perProject[p], p, project)
		}
	}

	return nil
}

// Expand joins every row of a project's in-house samplesheet with its vendor
// sample and emits one row per lane of that sample, in manifest order. The
// input table is left untouched.
func Expand(project string, internal *table.Table, ix *vendorsheet.Index) (*Expansion, error) {
	out := table.New(internal.Header)
	out.EnsureColumns(OutputColumns(ix.BatchScoped())...)

	exp := &Expansion{
		Project:        project,
		Sheet:          out,
		Emissions:      make([]Emission, 0, internal.Len()),
		LanesPerSample: make([]float64, 0, internal.Len()),
	}

	used := make(map[string]int)
	for i := range internal.Rows {
		// Line numbers as a spreadsheet user sees them, header included
		line := i + 2
		get := internal.Lookup(i)

		rowProject, ok := get(vendorsheet.InternalProject)
		if !ok {
			return nil, fmt.Errorf("%w: in-house samplesheet has no %s column", gsmerge.ErrFormat, vendorsheet.InternalProject)
		}
		rowProject = strings.TrimSpace(rowProject)

		key, err := ix.Scheme().InternalKey(get)
		if err != nil {
			return nil, err
		}

		sample, found := ix.Lookup(key)
		if !found {
			return nil, fmt.Errorf("%w: line %d: failed to supplement sample %s with meta-data from GenomeScan sample sheet", gsmerge.ErrConsistency, line, key)
		}
		if sample.Project != rowProject || sample.Project != project {
			return nil, fmt.Errorf("%w: line %d: project name for sample %s from inhouse sample sheet (%s) and from GenomeScan sample sheet (%s) is not the same project",
				gsmerge.ErrConsistency, line, key, rowProject, sample.Project)
		}
		if earlier, seen := used[key]; seen {
			return nil, fmt.Errorf("%w: line %d: sample %s was already listed on line %d of the inhouse sample sheet", gsmerge.ErrConsistency, line, key, earlier)
		}
		used[key] = line

		for _, lane := range sample.Lanes {
			row, err := expandRow(out, internal.Rows[i], sample, lane)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if err := out.AppendRow(row); err != nil {
				return nil, err
			}
			exp.Emissions = append(exp.Emissions, Emission{Sample: sample, Lane: lane})
		}
		exp.LanesPerSample = append(exp.LanesPerSample, float64(len(sample.Lanes)))
	}

	return exp, nil
}

// expandRow makes a fresh row in the layout of out: the in-house cells
// verbatim, then the lane's run coordinates and the vendor identifiers on top.
func expandRow(out *table.Table, source []string, sample *vendorsheet.VendorSample, lane lanes.LaneRecord) ([]string, error) {
	barcode1, barcode2, ok := pattern.SplitBarcodes(lane.Barcodes)
	if !ok {
		return nil, fmt.Errorf("%w: barcodes %q of sample %s cannot be split into barcode1 and barcode2", gsmerge.ErrFormat, lane.Barcodes, sample.VendorID)
	}

	row := make([]string, len(out.Header))
	copy(row, source)

	set := func(column, value string) {
		if i := out.Index(column); i >= 0 {
			row[i] = value
		}
	}

	// Null coordinates are written as empty cells
	set(ColumnLane, lane.Lane)
	set(ColumnFlowcell, lane.Flowcell)
	set(ColumnSequencer, lane.Sequencer.String)
	set(ColumnRun, lane.Run.String)
	set(ColumnSequencingStartDate, lane.StartDate.String)

	set(ColumnBarcode, pattern.JoinBarcodes(barcode1, barcode2))
	set(ColumnBarcode1, barcode1)
	set(ColumnBarcode2, barcode2)
	set(ColumnGSID, sample.VendorID)
	if sample.Batch.Valid {
		set(ColumnGSBatch, sample.Batch.String)
		set(ColumnGSBatchFolderName, sample.BatchFolderName.String)
	}

	return row, nil
}
