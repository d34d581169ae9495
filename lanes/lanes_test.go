package lanes

import (
	"errors"
	"strings"
	"testing"

	"github.com/carbocation/gsmerge"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
	"gopkg.in/guregu/null.v3"
)

func TestRunIndex(t *testing.T) {
	ri, err := NewRunIndex([]string{
		"200101_SEQ001_0042_FLOWCELL1",
		"Reports",
		"200102_SEQ001_0043_FLOWCELL2",
		"200101_SEQ001_0042_FLOWCELL1",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	if ri.Len() != 2 {
		t.Errorf("Expected 2 flowcells, got %d", ri.Len())
	}

	rc, ok := ri.Lookup("FLOWCELL2")
	if !ok {
		t.Fatal("FLOWCELL2 missing")
	}
	if diff := cmp.Diff(RunCoordinate{Flowcell: "FLOWCELL2", Sequencer: "SEQ001", Run: "0043", StartDate: "200102"}, rc); diff != "" {
		t.Error(diff)
	}

	if _, ok := ri.Lookup("Reports"); ok {
		t.Error("Non-run directories should not be indexed")
	}
}

func TestRunIndexConflictingFlowcell(t *testing.T) {
	_, err := NewRunIndex([]string{
		"200101_SEQ001_0042_FLOWCELL1",
		"200102_SEQ002_0007_FLOWCELL1",
	}, zaptest.NewLogger(t))
	if !errors.Is(err, gsmerge.ErrConsistency) {
		t.Errorf("Expected a consistency error, got %v", err)
	}
}

func TestManifestIndexLaneRecord(t *testing.T) {
	runs, err := NewRunIndex([]string{"200101_SEQ001_0042_FLOWCELL1"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	manifest := "abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq.gz\n" +
		"def456  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R2.fastq.gz\n"

	mi, err := BuildManifestIndex(strings.NewReader(manifest), runs, ManifestOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	records, ok := mi.Lanes(Key{Barcodes: "AAAA-TTTT", VendorID: "1001-01-001"})
	if !ok {
		t.Fatal("Sample missing from manifest index")
	}

	expected := []LaneRecord{{
		Lane:      "3",
		Barcodes:  "AAAA-TTTT",
		Flowcell:  "FLOWCELL1",
		StartDate: null.StringFrom("200101"),
		Sequencer: null.StringFrom("SEQ001"),
		Run:       null.StringFrom("0042"),
	}}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Error(diff)
	}
	if !records[0].Resolved() {
		t.Error("Expected record to be resolved")
	}
}

func TestManifestIndexEncounterOrder(t *testing.T) {
	runs, err := NewRunIndex([]string{"181128_K00296_0363_H2TGVBBXY", "181128_K00296_0364_HYKGJBBXX"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	manifest := strings.Join([]string{
		"aa  HYKGJBBXX_103373-032-059_CTCTCTAC-AGAGGATA_L008_R1.fastq.gz",
		"bb  H2TGVBBXY_103373-032-059_CTCTCTAC-AGAGGATA_L007_R1.fastq.gz",
		"cc  H2TGVBBXY_103373-032-058_CAGAGAGG-TCTACTCT_L007_R1.fastq.gz",
	}, "\n")

	mi, err := BuildManifestIndex(strings.NewReader(manifest), runs, ManifestOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if mi.Len() != 2 {
		t.Errorf("Expected 2 samples, got %d", mi.Len())
	}

	records, _ := mi.Lanes(Key{Barcodes: "CTCTCTAC-AGAGGATA", VendorID: "103373-032-059"})
	if len(records) != 2 || records[0].Lane != "8" || records[1].Lane != "7" {
		t.Errorf("Lanes not in manifest order: %+v", records)
	}

	// The returned slice is a copy
	records[0].Lane = "1"
	again, _ := mi.Lanes(Key{Barcodes: "CTCTCTAC-AGAGGATA", VendorID: "103373-032-059"})
	if again[0].Lane != "8" {
		t.Error("Lanes leaked the index's internal slice")
	}
}

func TestManifestIndexUnresolvedFlowcell(t *testing.T) {
	runs, err := NewRunIndex(nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	manifest := "abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq.gz\n"

	_, err = BuildManifestIndex(strings.NewReader(manifest), runs, ManifestOptions{}, zaptest.NewLogger(t))
	if !errors.Is(err, gsmerge.ErrConsistency) {
		t.Errorf("Expected a consistency error, got %v", err)
	}

	mi, err := BuildManifestIndex(strings.NewReader(manifest), runs, ManifestOptions{AllowUnresolvedFlowcells: true}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	records, ok := mi.Lanes(Key{Barcodes: "AAAA-TTTT", VendorID: "1001-01-001"})
	if !ok || len(records) != 1 {
		t.Fatalf("Expected one record, got %+v", records)
	}
	if records[0].Resolved() || records[0].Run.Valid {
		t.Error("Expected null run coordinates")
	}
	if diff := cmp.Diff([]string{"FLOWCELL1"}, mi.Unresolved()); diff != "" {
		t.Error(diff)
	}
}

func TestManifestIndexDuplicateLane(t *testing.T) {
	runs, err := NewRunIndex([]string{"200101_SEQ001_0042_FLOWCELL1"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	manifest := "abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq.gz\n" +
		"abc124  ./copy/FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq.gz\n"

	_, err = BuildManifestIndex(strings.NewReader(manifest), runs, ManifestOptions{}, zaptest.NewLogger(t))
	if !errors.Is(err, gsmerge.ErrConsistency) {
		t.Errorf("Expected a consistency error, got %v", err)
	}
}
