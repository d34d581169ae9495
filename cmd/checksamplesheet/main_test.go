package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/gsmerge/sheetcheck"
	"go.uber.org/zap/zaptest"
)

func TestCheckWritesVerdict(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "PROJA.csv")
	logfile := filepath.Join(dir, "PROJA.check.log")

	sheet := "externalSampleID,project,sequencer,sequencingStartDate,flowcell,run,lane,seqType,prepKit,capturingKit,barcode,barcode2,barcodeType\n" +
		"S1,PROJA,,200101,,,,PE,Kit,None,AAAA,TTTT,RPI\n"
	if err := os.WriteFile(input, []byte(sheet), 0644); err != nil {
		t.Fatal(err)
	}

	passed, err := check(context.Background(), nil, input, logfile, sheetcheck.ModeGenomeScan, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if !passed {
		t.Error("Expected the samplesheet to pass")
	}
	if got, _ := os.ReadFile(logfile); string(got) != "OK\n" {
		t.Errorf("Expected OK, got %q", got)
	}

	// The same samplesheet lacks run coordinates for an in-house run
	passed, err = check(context.Background(), nil, input, logfile, sheetcheck.ModeComplete, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if passed {
		t.Error("Expected the samplesheet to fail")
	}
	got, _ := os.ReadFile(logfile)
	if !strings.HasSuffix(string(got), "Samplesheet PROJA failed.\n") {
		t.Errorf("Unexpected verdict %q", got)
	}
}

func TestCheckEmptySamplesheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "PROJA.csv")
	logfile := filepath.Join(dir, "PROJA.log")

	if err := os.WriteFile(input, nil, 0644); err != nil {
		t.Fatal(err)
	}

	passed, err := check(context.Background(), nil, input, logfile, sheetcheck.ModeGenomeScan, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if passed {
		t.Error("Expected an empty samplesheet to fail")
	}

	got, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "The complete file is empty?!") || !strings.HasSuffix(string(got), "Samplesheet PROJA failed.\n") {
		t.Errorf("Unexpected verdict %q", got)
	}
}
