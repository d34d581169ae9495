// Package pattern recognizes the fixed grammars used to name converted run
// directories, FASTQ files in a checksum manifest, and samples in a GenomeScan
// samplesheet. Non-matching input is reported through a false ok value; the
// caller decides whether to skip or to fail.
package pattern

import (
	"regexp"
	"strings"
)

// BarcodeSeparator joins the two halves of a dual index.
const BarcodeSeparator = "-"

var (
	// e.g. 180719_K00296_0345_HTCKVBBYX
	runDirPattern = regexp.MustCompile(`^([0-9]{6})_([a-zA-Z0-9]{6})_([0-9]{4})_([a-zA-Z0-9]{9})$`)

	// e.g. 8f246fccfda8ba676b82edc1f66b0006  HWCKVBBXX_103373-011-004_GGACTCCT-ATAGAGAG_L001_R1.fastq.gz
	manifestLinePattern = regexp.MustCompile(`^([a-z0-9]+).+?([a-zA-Z0-9]{9})_([0-9-]+)_([ATGCN]+-[ATGCN]+)_L00([0-9]).+R1\.fastq\.gz$`)

	// e.g. QXTR_426-Exoom_v1-123456
	sampleNamePattern = regexp.MustCompile(`^([a-zA-Z0-9_-]+)-([0-9]+)$`)

	// e.g. 103373-032-059
	gsIDPattern = regexp.MustCompile(`^([0-9]+-[0-9]+)-([0-9]+)$`)
)

// RunDir holds the run coordinates encoded in the name of a directory with
// converted FastQ files.
type RunDir struct {
	StartDate string
	Sequencer string
	Run       string
	Flowcell  string
}

// ParseRunDir parses a directory name of the form
// <yymmdd>_<sequencer>_<run>_<flowcell>.
func ParseRunDir(name string) (RunDir, bool) {
	m := runDirPattern.FindStringSubmatch(name)
	if m == nil {
		return RunDir{}, false
	}

	return RunDir{
		StartDate: m[1],
		Sequencer: m[2],
		Run:       m[3],
		Flowcell:  m[4],
	}, true
}

// ManifestEntry is one read-1 FastQ file listed in a checksum manifest.
type ManifestEntry struct {
	Checksum string
	Flowcell string
	VendorID string
	Barcodes string
	Lane     string
}

// ParseManifestLine parses a line of an md5 checksum file. Only read-1 FastQ
// files are recognized.
func ParseManifestLine(line string) (ManifestEntry, bool) {
	m := manifestLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return ManifestEntry{}, false
	}

	return ManifestEntry{
		Checksum: m[1],
		Flowcell: m[2],
		VendorID: m[3],
		Barcodes: m[4],
		Lane:     m[5],
	}, true
}

// SampleName is the sample identifier our lab hands to GenomeScan: the project
// followed by the process step ID that is unique for each sample.
type SampleName struct {
	Project       string
	ProcessStepID string
}

// ParseSampleName splits <project>-<processStepID> on the last dash.
func ParseSampleName(value string) (SampleName, bool) {
	m := sampleNamePattern.FindStringSubmatch(value)
	if m == nil {
		return SampleName{}, false
	}

	return SampleName{Project: m[1], ProcessStepID: m[2]}, true
}

// GSID is a GenomeScan sample ID split into the batch it belongs to and the
// sample number within that batch.
type GSID struct {
	Batch  string
	Sample string
}

// ParseGSID parses a GenomeScan ID such as 103373-032-059 into batch 103373-032
// and sample 059.
func ParseGSID(value string) (GSID, bool) {
	m := gsIDPattern.FindStringSubmatch(value)
	if m == nil {
		return GSID{}, false
	}

	return GSID{Batch: m[1], Sample: m[2]}, true
}

// SplitBarcodes splits a dual index such as CGAGGCTG-AGGCTTAG into its two
// halves. Both halves must be non-empty.
func SplitBarcodes(pair string) (string, string, bool) {
	halves := strings.Split(pair, BarcodeSeparator)
	if len(halves) != 2 || halves[0] == "" || halves[1] == "" {
		return "", "", false
	}

	return halves[0], halves[1], true
}

// JoinBarcodes is the inverse of SplitBarcodes.
func JoinBarcodes(barcode1, barcode2 string) string {
	return barcode1 + BarcodeSeparator + barcode2
}
