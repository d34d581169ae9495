package reconcile

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/vendorsheet"
)

// DefaultSamplesheetPatterns match the names under which GenomeScan has
// delivered its samplesheet over the years.
var DefaultSamplesheetPatterns = []string{
	"CSV_UMCG_*.csv",
	"UMCG_CSV_*.csv.converted",
	"CSV_UMCG_*.xls",
	"UMCG_CSV_*.xls",
}

// DefaultManifestName is the checksum manifest looked for in the GenomeScan directory.
const DefaultManifestName = "checksums.md5"

// Config describes one merge: where the batch lives and how to match it.
type Config struct {
	// GenomeScanDir holds one GenomeScan batch: the samplesheet, the checksum
	// manifest and the converted run directories.
	GenomeScanDir string

	// InhouseDir holds the incomplete in-house samplesheets, one
	// <project>.csv per project.
	InhouseDir string

	// OutputDir receives the complete samplesheets. It must differ from
	// InhouseDir.
	OutputDir string

	// BatchName, if set, makes the merge batch-scoped: output rows gain the
	// gsBatch and gsBatchFolderName columns.
	BatchName string

	Scheme vendorsheet.Scheme

	ManifestName        string
	SamplesheetPatterns []string

	// VendorEncoding is the character set of a delimited GenomeScan
	// samplesheet. Empty means UTF-8.
	VendorEncoding string

	AllowUnresolvedFlowcells bool

	// LaneReport, if set, is where a tab-delimited overview of every emitted
	// lane is written.
	LaneReport string
}

func (c *Config) applyDefaults() {
	if c.ManifestName == "" {
		c.ManifestName = DefaultManifestName
	}
	if len(c.SamplesheetPatterns) == 0 {
		c.SamplesheetPatterns = DefaultSamplesheetPatterns
	}
}

// Validate checks the configuration before any processing happens.
func (c *Config) Validate(ctx context.Context, client *storage.Client) error {
	required := []struct{ name, value string }{
		{"GenomeScan input dir", c.GenomeScanDir},
		{"in-house samplesheet dir", c.InhouseDir},
		{"samplesheet output dir", c.OutputDir},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: no %s given", gsmerge.ErrConfig, r.name)
		}
	}

	same, err := gsmerge.SameLocation(c.InhouseDir, c.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", gsmerge.ErrConfig, err)
	}
	if same {
		return fmt.Errorf("%w: samplesheet input and output folder are the same; choose another folder for the output to prevent overwriting original files", gsmerge.ErrConfig)
	}

	for _, dir := range []string{c.GenomeScanDir, c.InhouseDir, c.OutputDir} {
		if err := gsmerge.CheckDir(ctx, client, dir); err != nil {
			return err
		}
	}

	return nil
}
