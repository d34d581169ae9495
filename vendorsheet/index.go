// Package vendorsheet indexes the GenomeScan samplesheet of one batch, joining
// each sample with the lanes it was sequenced on.
package vendorsheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/lanes"
	"github.com/carbocation/gsmerge/pattern"
	"github.com/carbocation/gsmerge/table"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"
)

// VendorSample is one sample of the GenomeScan samplesheet together with its
// lanes. It owns its Lanes.
type VendorSample struct {
	Project     string
	VendorID    string
	Barcodes    string
	IdentityKey string

	// Batch is the GenomeScan batch parsed from the vendor ID; only set for
	// batch-scoped merges.
	Batch null.String

	// BatchFolderName is set when the batch was delivered in a folder whose
	// name differs from Batch.
	BatchFolderName null.String

	Lanes []lanes.LaneRecord
}

// Options control how Build indexes a vendor samplesheet.
type Options struct {
	Scheme Scheme

	// BatchName is the name of the folder holding the batch. When set, vendor
	// IDs must carry a batch and the output gains batch columns.
	BatchName string
}

// Index maps identity keys to vendor samples. It is read-only once built.
type Index struct {
	scheme        Scheme
	idColumn      string
	batchScoped   bool
	samples       map[string]*VendorSample
	order         []*VendorSample
	projectCounts map[string]int
}

// Build indexes the rows of a GenomeScan samplesheet. Rows with an empty
// identity are skipped with a warning; every other problem is fatal.
func Build(t *table.Table, manifest *lanes.ManifestIndex, opts Options, logger *zap.Logger) (*Index, error) {
	idColumn, err := IdentityColumn(t)
	if err != nil {
		return nil, err
	}
	logger.Debug("Found sample ID column", zap.String("column", idColumn))

	for _, column := range []string{ColumnGSID, ColumnIndex1, ColumnIndex2} {
		if !t.Has(column) {
			return nil, fmt.Errorf("%w: GenomeScan samplesheet has no %s column", gsmerge.ErrFormat, column)
		}
	}

	scheme := opts.Scheme
	if scheme == SchemeAuto {
		scheme = DetectScheme(t, idColumn)
		logger.Info("Detected identity scheme", zap.String("scheme", scheme.String()))
	}

	ix := &Index{
		scheme:        scheme,
		idColumn:      idColumn,
		batchScoped:   opts.BatchName != "",
		samples:       make(map[string]*VendorSample),
		order:         make([]*VendorSample, 0, t.Len()),
		projectCounts: make(map[string]int),
	}

	for i := range t.Rows {
		// Line numbers as a spreadsheet user sees them, header included
		line := i + 2

		identity, _ := t.Get(i, idColumn)
		identity = strings.TrimSpace(identity)
		if identity == "" {
			logger.Warn("Empty row detected in GS samplesheet", zap.Int("line", line))
			continue
		}

		sample, err := ix.parseRow(t, i, identity, opts)
		if err != nil {
			return nil, fmt.Errorf("line %d of the GenomeScan samplesheet: %w", line, err)
		}

		if known, exists := ix.samples[sample.IdentityKey]; exists {
			return nil, fmt.Errorf("%w: line %d of the GenomeScan samplesheet: duplicate sample %s in project %s (GS_IDs %s and %s)",
				gsmerge.ErrConsistency, line, sample.IdentityKey, sample.Project, known.VendorID, sample.VendorID)
		}

		key := lanes.Key{Barcodes: sample.Barcodes, VendorID: sample.VendorID}
		records, found := manifest.Lanes(key)
		if !found {
			return nil, fmt.Errorf("%w: meta data parsed from original FastQ filenames missing for sample %s with barcodes %s from project %s",
				gsmerge.ErrConsistency, sample.VendorID, sample.Barcodes, sample.Project)
		}
		sample.Lanes = records

		ix.samples[sample.IdentityKey] = sample
		ix.order = append(ix.order, sample)
		ix.projectCounts[sample.Project]++

		logger.Debug("Indexed GenomeScan sample",
			zap.String("project", sample.Project),
			zap.String("key", sample.IdentityKey),
			zap.String("GS_ID", sample.VendorID),
			zap.Int("lanes", len(sample.Lanes)))
	}

	logger.Info("Indexed GenomeScan samplesheet",
		zap.Int("samples", len(ix.order)),
		zap.Int("projects", len(ix.projectCounts)))

	return ix, nil
}

func (ix *Index) parseRow(t *table.Table, i int, identity string, opts Options) (*VendorSample, error) {
	vendorID, _ := t.Get(i, ColumnGSID)
	index1, _ := t.Get(i, ColumnIndex1)
	index2, _ := t.Get(i, ColumnIndex2)

	sample := &VendorSample{
		VendorID: strings.TrimSpace(vendorID),
		Barcodes: pattern.JoinBarcodes(strings.TrimSpace(index1), strings.TrimSpace(index2)),
	}

	if _, _, ok := pattern.SplitBarcodes(sample.Barcodes); !ok {
		return nil, fmt.Errorf("%w: barcodes %q cannot be split into %s and %s", gsmerge.ErrFormat, sample.Barcodes, ColumnIndex1, ColumnIndex2)
	}

	switch ix.scheme {
	case SchemeProcessStep:
		sn, ok := pattern.ParseSampleName(identity)
		if !ok {
			return nil, fmt.Errorf("%w: cannot parse project name and sampleProcessStepID from %q in column %s", gsmerge.ErrFormat, identity, ix.idColumn)
		}
		sample.Project = sn.Project
		sample.IdentityKey = sn.ProcessStepID

	case SchemeBarcodeProject:
		// Confusingly, the Sample_ID column holds the project name here
		sample.Project = identity
		sample.IdentityKey = barcodeProjectKey(sample.Barcodes, identity)

	default:
		return nil, fmt.Errorf("%w: identity scheme %s was never resolved", gsmerge.ErrConfig, ix.scheme)
	}

	if opts.BatchName != "" {
		gsID, ok := pattern.ParseGSID(sample.VendorID)
		if !ok {
			return nil, fmt.Errorf("%w: cannot parse gsBatch from %q in column %s", gsmerge.ErrFormat, sample.VendorID, ColumnGSID)
		}
		sample.Batch = null.StringFrom(gsID.Batch)
		if gsID.Batch != opts.BatchName {
			sample.BatchFolderName = null.StringFrom(opts.BatchName)
		}
	}

	return sample, nil
}

// Lookup finds the vendor sample with the given identity key.
func (ix *Index) Lookup(key string) (*VendorSample, bool) {
	sample, ok := ix.samples[key]
	return sample, ok
}

// Projects returns the unique project names, sorted.
func (ix *Index) Projects() []string {
	out := make([]string, 0, len(ix.projectCounts))
	for project := range ix.projectCounts {
		out = append(out, project)
	}
	sort.Strings(out)

	return out
}

// ProjectCount is the number of vendor samples in a project.
func (ix *Index) ProjectCount(project string) int {
	return ix.projectCounts[project]
}

// Samples returns the vendor samples in samplesheet order.
func (ix *Index) Samples() []*VendorSample {
	return append([]*VendorSample(nil), ix.order...)
}

// Scheme reports the matching scheme the index was built with.
func (ix *Index) Scheme() Scheme {
	return ix.scheme
}

// IdentityColumn is the vendor column that identifies a sample under the index's scheme.
func (ix *Index) IdentityColumn() string {
	return ix.idColumn
}

// BatchScoped reports whether samples carry batch information.
func (ix *Index) BatchScoped() bool {
	return ix.batchScoped
}

// Len is the number of indexed samples.
func (ix *Index) Len() int {
	return len(ix.order)
}
