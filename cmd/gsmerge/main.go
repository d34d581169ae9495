// gsmerge combines the samplesheet and checksum manifest of a GenomeScan batch
// with the incomplete in-house samplesheets of its projects, producing one
// complete samplesheet per project with a row for every sequenced lane.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/compileinfo"
	"github.com/carbocation/gsmerge/reconcile"
	"github.com/carbocation/gsmerge/vendorsheet"
	"go.uber.org/zap"
)

func main() {
	var genomescanDir, inhouseDir, outputDir, batch string
	var schemeName, logLevel, manifestName, samplesheetGlob, vendorEncoding, laneReport string
	var allowUnresolved bool

	flag.StringVar(&genomescanDir, "genomescan_dir", "", "Folder (local or gs://) with the GenomeScan samplesheet, checksums and converted runs of one batch")
	flag.StringVar(&inhouseDir, "inhouse_dir", "", "Folder (local or gs://) with one incomplete <project>.csv samplesheet per project")
	flag.StringVar(&outputDir, "output_dir", "", "Folder (local or gs://) for the complete samplesheets. Must differ from -inhouse_dir")
	flag.StringVar(&batch, "batch", "", "Optional. Name of the batch folder. If set, output gains the gsBatch and gsBatchFolderName columns")
	flag.StringVar(&schemeName, "scheme", vendorsheet.SchemeAuto.String(), "How GenomeScan samples are matched with in-house samples: auto, barcode-project or process-step")
	flag.StringVar(&logLevel, "log_level", "INFO", "DEBUG, INFO, WARNING, ERROR or CRITICAL")
	flag.StringVar(&manifestName, "manifest", reconcile.DefaultManifestName, "Name of the checksum manifest inside -genomescan_dir")
	flag.StringVar(&samplesheetGlob, "samplesheet_glob", strings.Join(reconcile.DefaultSamplesheetPatterns, ","), "Comma-separated patterns that find the GenomeScan samplesheet inside -genomescan_dir")
	flag.StringVar(&vendorEncoding, "vendor_encoding", "", "Optional. Character set of a delimited GenomeScan samplesheet, e.g. windows-1252. Default is UTF-8")
	flag.BoolVar(&allowUnresolved, "allow_unresolved_flowcells", false, "Write lanes of flowcells without a converted run folder with empty run coordinates instead of failing")
	flag.StringVar(&laneReport, "lane_report", "", "Optional. File (local or gs://) for a tab-delimited report of every emitted lane")
	flag.Parse()

	if genomescanDir == "" || inhouseDir == "" || outputDir == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger, err := gsmerge.NewLogger(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.PrintDefaults()
		os.Exit(1)
	}
	defer logger.Sync()

	compileinfo.Log(logger)

	scheme, err := vendorsheet.ParseScheme(schemeName)
	if err != nil {
		logger.Fatal("Invalid -scheme", zap.Error(err))
	}

	cfg := reconcile.Config{
		BatchName:                batch,
		Scheme:                   scheme,
		ManifestName:             manifestName,
		SamplesheetPatterns:      splitPatterns(samplesheetGlob),
		VendorEncoding:           vendorEncoding,
		AllowUnresolvedFlowcells: allowUnresolved,
	}

	for _, location := range []struct {
		dest  *string
		value string
	}{
		{&cfg.GenomeScanDir, genomescanDir},
		{&cfg.InhouseDir, inhouseDir},
		{&cfg.OutputDir, outputDir},
		{&cfg.LaneReport, laneReport},
	} {
		expanded, err := gsmerge.ExpandHome(location.value)
		if err != nil {
			logger.Fatal("Could not expand path", zap.String("path", location.value), zap.Error(err))
		}
		*location.dest = expanded
	}

	ctx := context.Background()

	var client *storage.Client
	if usesGoogleStorage(cfg.GenomeScanDir, cfg.InhouseDir, cfg.OutputDir, cfg.LaneReport) {
		client, err = storage.NewClient(ctx)
		if err != nil {
			logger.Fatal("Could not create a Google Storage client", zap.Error(err))
		}
		defer client.Close()
	}

	if _, err := reconcile.New(cfg, client, logger).Run(ctx); err != nil {
		logger.Fatal("Samplesheet merging FAILED", zap.Error(err))
	}
}

func splitPatterns(value string) []string {
	out := make([]string, 0)
	for _, pattern := range strings.Split(value, ",") {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			out = append(out, pattern)
		}
	}

	return out
}

func usesGoogleStorage(locations ...string) bool {
	for _, location := range locations {
		if gsmerge.IsGoogleStorage(location) {
			return true
		}
	}

	return false
}
