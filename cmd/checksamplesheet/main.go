// checksamplesheet validates an in-house samplesheet and writes the verdict to
// a log file: every problem found, or OK.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/compileinfo"
	"github.com/carbocation/gsmerge/sheetcheck"
	"go.uber.org/zap"
)

func main() {
	var input, logfile, modeName, logLevel string

	flag.StringVar(&input, "input", "", "Samplesheet to check (local or gs://)")
	flag.StringVar(&logfile, "logfile", "", "File (local or gs://) that receives the problems found, or OK")
	flag.StringVar(&modeName, "mode", sheetcheck.ModeComplete.String(), "complete, for samplesheets of in-house runs, or genomescan, for samplesheets that still lack run coordinates")
	flag.StringVar(&logLevel, "log_level", "INFO", "DEBUG, INFO, WARNING, ERROR or CRITICAL")
	flag.Parse()

	if input == "" || logfile == "" {
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

	mode, err := sheetcheck.ParseMode(modeName)
	if err != nil {
		logger.Fatal("Invalid -mode", zap.Error(err))
	}

	ctx := context.Background()

	var client *storage.Client
	if gsmerge.IsGoogleStorage(input) || gsmerge.IsGoogleStorage(logfile) {
		client, err = storage.NewClient(ctx)
		if err != nil {
			logger.Fatal("Could not create a Google Storage client", zap.Error(err))
		}
		defer client.Close()
	}

	passed, err := check(ctx, client, input, logfile, mode, logger)
	if err != nil {
		logger.Fatal("Could not check samplesheet", zap.String("input", input), zap.Error(err))
	}
	if !passed {
		logger.Sync()
		os.Exit(1)
	}
}

// check validates one samplesheet, records the verdict in logfile and reports
// whether the samplesheet passed.
func check(ctx context.Context, client *storage.Client, input, logfile string, mode sheetcheck.Mode, logger *zap.Logger) (bool, error) {
	logger.Info("Checking samplesheet", zap.String("input", input), zap.String("mode", mode.String()))

	data, err := gsmerge.ReadFile(ctx, client, input)
	if err != nil {
		return false, err
	}

	problems, err := sheetcheck.CheckBytes(data, mode)
	if err != nil {
		return false, err
	}
	for _, p := range problems {
		logger.Error("Samplesheet problem", zap.Int("line", p.Line), zap.String("column", p.Column), zap.String("problem", p.Message))
	}

	name := strings.TrimSuffix(gsmerge.Base(input), filepath.Ext(input))
	if err := gsmerge.WriteFile(ctx, client, logfile, []byte(sheetcheck.Report(name, problems))); err != nil {
		return false, err
	}

	if len(problems) > 0 {
		logger.Warn("Samplesheet failed", zap.String("input", input), zap.Int("problems", len(problems)))
		return false, nil
	}
	logger.Info("Samplesheet OK", zap.String("input", input))

	return true, nil
}
