// Package reconcile merges the GenomeScan samplesheet and checksum manifest of
// one batch into the incomplete in-house samplesheets, producing one complete
// samplesheet per project with a row for every lane each sample was sequenced
// on.
package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/lanes"
	"github.com/carbocation/gsmerge/table"
	"github.com/carbocation/gsmerge/vendorsheet"
	"go.uber.org/zap"
)

// Stage is a step of processing one project.
type Stage int

const (
	StageReadInternalSheet Stage = iota
	StageValidateCardinality
	StageJoinAndExpand
	StageWriteOutput
)

func (s Stage) String() string {
	switch s {
	case StageReadInternalSheet:
		return "read in-house samplesheet"
	case StageValidateCardinality:
		return "validate cardinality"
	case StageJoinAndExpand:
		return "join and expand"
	case StageWriteOutput:
		return "write output"
	}

	return fmt.Sprintf("Stage(%d)", int(s))
}

// ProjectError reports the project and stage at which a merge failed.
type ProjectError struct {
	Project string
	Stage   Stage
	Err     error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("project %s: %s: %v", e.Project, e.Stage, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// Engine merges one GenomeScan batch into the in-house samplesheets.
type Engine struct {
	cfg    Config
	client *storage.Client
	logger *zap.Logger
}

// New creates an engine. The storage client is only needed when one of the
// locations is on Google Storage and may otherwise be nil.
func New(cfg Config, client *storage.Client, logger *zap.Logger) *Engine {
	cfg.applyDefaults()

	return &Engine{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Run performs the whole merge. Every project is expanded in memory before
// anything is written, so that a fatal problem in any project leaves no
// output behind.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	if err := e.cfg.Validate(ctx, e.client); err != nil {
		return nil, err
	}

	e.logger.Info("Starting to combine samplesheets",
		zap.String("genomescan", e.cfg.GenomeScanDir),
		zap.String("inhouse", e.cfg.InhouseDir),
		zap.String("output", e.cfg.OutputDir))

	manifest, err := e.indexLanes(ctx)
	if err != nil {
		return nil, err
	}

	ix, err := e.indexVendorSheet(ctx, manifest)
	if err != nil {
		return nil, err
	}

	expansions := make([]*Expansion, 0, len(ix.Projects()))
	for _, project := range ix.Projects() {
		exp, err := e.processProject(ctx, project, ix)
		if err != nil {
			return nil, err
		}
		expansions = append(expansions, exp)
	}

	summary := newSummary(expansions, manifest.Unresolved())
	for _, exp := range expansions {
		location, err := e.writeOutput(ctx, exp)
		if err != nil {
			return nil, &ProjectError{Project: exp.Project, Stage: StageWriteOutput, Err: err}
		}
		summary.Outputs = append(summary.Outputs, location)
	}

	if e.cfg.LaneReport != "" {
		if err := e.writeLaneReport(ctx, expansions); err != nil {
			return nil, err
		}
	}

	summary.Log(e.logger)
	e.logger.Info("Samplesheet merging DONE!")

	return summary, nil
}

func (e *Engine) indexLanes(ctx context.Context) (*lanes.ManifestIndex, error) {
	dirNames, err := gsmerge.ListDirNames(ctx, e.client, e.cfg.GenomeScanDir)
	if err != nil {
		return nil, err
	}
	runs, err := lanes.NewRunIndex(dirNames, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Indexed converted run directories", zap.Int("flowcells", runs.Len()))

	manifestPath := gsmerge.Join(e.cfg.GenomeScanDir, e.cfg.ManifestName)
	rc, err := gsmerge.Open(ctx, e.client, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("checksum manifest: %w", err)
	}
	defer rc.Close()
	e.logger.Info("Found checksums file", zap.String("path", manifestPath))

	return lanes.BuildManifestIndex(rc, runs, lanes.ManifestOptions{
		AllowUnresolvedFlowcells: e.cfg.AllowUnresolvedFlowcells,
	}, e.logger)
}

func (e *Engine) indexVendorSheet(ctx context.Context, manifest *lanes.ManifestIndex) (*vendorsheet.Index, error) {
	location, err := e.locateSamplesheet(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Info("Found GenomeScan samplesheet", zap.String("path", location))

	data, err := gsmerge.ReadFile(ctx, e.client, location)
	if err != nil {
		return nil, err
	}

	var sheet *table.Table
	if strings.HasSuffix(strings.ToLower(location), ".xls") {
		sheet, err = table.ReadXLS(bytes.NewReader(data), "utf-8")
	} else {
		sheet, err = table.Read(bytes.NewReader(data), table.ReadOptions{Encoding: e.cfg.VendorEncoding})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	ix, err := vendorsheet.Build(sheet, manifest, vendorsheet.Options{
		Scheme:    e.cfg.Scheme,
		BatchName: e.cfg.BatchName,
	}, e.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	return ix, nil
}

// locateSamplesheet finds the single GenomeScan samplesheet of the batch.
func (e *Engine) locateSamplesheet(ctx context.Context) (string, error) {
	seen := make(map[string]struct{})
	found := make([]string, 0, 1)
	for _, pattern := range e.cfg.SamplesheetPatterns {
		matches, err := gsmerge.Glob(ctx, e.client, e.cfg.GenomeScanDir, pattern)
		if err != nil {
			return "", err
		}
		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			found = append(found, match)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: no GenomeScan samplesheet matching %s found in %s",
			gsmerge.ErrConfig, strings.Join(e.cfg.SamplesheetPatterns, " or "), e.cfg.GenomeScanDir)
	case 1:
		return found[0], nil
	}

	return "", fmt.Errorf("%w: found %d GenomeScan samplesheets in %s, expected one: %s",
		gsmerge.ErrConfig, len(found), e.cfg.GenomeScanDir, strings.Join(found, ", "))
}

// processProject runs every stage but the last for one project.
func (e *Engine) processProject(ctx context.Context, project string, ix *vendorsheet.Index) (*Expansion, error) {
	logger := e.logger.With(zap.String("project", project))

	location := e.internalSheetPath(project)
	data, err := gsmerge.ReadFile(ctx, e.client, location)
	if err != nil {
		return nil, &ProjectError{Project: project, Stage: StageReadInternalSheet, Err: err}
	}
	internal, err := table.Read(bytes.NewReader(data), table.ReadOptions{})
	if err != nil {
		return nil, &ProjectError{Project: project, Stage: StageReadInternalSheet, Err: fmt.Errorf("%s: %w", location, err)}
	}
	logger.Debug("Read in-house samplesheet", zap.String("path", location), zap.Int("samples", internal.Len()))

	if err := ValidateCardinality(project, internal, ix); err != nil {
		return nil, &ProjectError{Project: project, Stage: StageValidateCardinality, Err: err}
	}
	logger.Debug("Number of samples in GS samplesheet is the same as in inhouse samplesheet", zap.Int("samples", internal.Len()))

	exp, err := Expand(project, internal, ix)
	if err != nil {
		return nil, &ProjectError{Project: project, Stage: StageJoinAndExpand, Err: fmt.Errorf("%s: %w", location, err)}
	}
	logger.Info("Expanded samplesheet", zap.Int("samples", internal.Len()), zap.Int("rows", exp.Sheet.Len()))

	return exp, nil
}

func (e *Engine) internalSheetPath(project string) string {
	return gsmerge.Join(e.cfg.InhouseDir, project+".csv")
}

func (e *Engine) outputPath(project string) string {
	return gsmerge.Join(e.cfg.OutputDir, gsmerge.Base(e.internalSheetPath(project)))
}

func (e *Engine) writeOutput(ctx context.Context, exp *Expansion) (string, error) {
	location := e.outputPath(exp.Project)

	data, err := exp.Sheet.Bytes(',')
	if err != nil {
		return "", err
	}

	e.logger.Info("Writing new complete samplesheet", zap.String("path", location))
	if err := gsmerge.WriteFile(ctx, e.client, location, data); err != nil {
		return "", err
	}

	return location, nil
}
