package pattern

import "testing"

func TestParseRunDir(t *testing.T) {
	rd, ok := ParseRunDir("200101_SEQ001_0042_FLOWCELL1")
	if !ok {
		t.Fatal("Expected run dir to match")
	}
	if rd.StartDate != "200101" || rd.Sequencer != "SEQ001" || rd.Run != "0042" || rd.Flowcell != "FLOWCELL1" {
		t.Errorf("Mismatch: %+v", rd)
	}

	for _, name := range []string{
		"200101_SEQ001_0042_FLOWCELL12",
		"20010_SEQ001_0042_FLOWCELL1",
		"200101_SEQ01_0042_FLOWCELL1",
		"200101_SEQ001_042_FLOWCELL1",
		"Undetermined",
		"",
	} {
		if _, ok := ParseRunDir(name); ok {
			t.Errorf("Did not expect %q to match", name)
		}
	}
}

func TestParseManifestLine(t *testing.T) {
	entry, ok := ParseManifestLine("abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq.gz\n")
	if !ok {
		t.Fatal("Expected manifest line to match")
	}
	if entry.Checksum != "abc123" ||
		entry.Flowcell != "FLOWCELL1" ||
		entry.VendorID != "1001-01-001" ||
		entry.Barcodes != "AAAA-TTTT" ||
		entry.Lane != "3" {
		t.Errorf("Mismatch: %+v", entry)
	}
}

func TestParseManifestLineRealistic(t *testing.T) {
	entry, ok := ParseManifestLine("8f246fccfda8ba676b82edc1f66b0006  HWCKVBBXX_103373-011-004_GGACTCCT-ATAGAGAG_L001_R1.fastq.gz\r\n")
	if !ok {
		t.Fatal("Expected manifest line to match")
	}
	if entry.Flowcell != "HWCKVBBXX" || entry.VendorID != "103373-011-004" || entry.Barcodes != "GGACTCCT-ATAGAGAG" || entry.Lane != "1" {
		t.Errorf("Mismatch: %+v", entry)
	}
}

func TestParseManifestLineSkips(t *testing.T) {
	for _, line := range []string{
		"abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R2.fastq.gz",
		"abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq",
		"abc123  FLOWCELL1_1001-01-001_AAAA_L003_R1.fastq.gz",
		"abc123  FLOWCELL1_1001-01-001_AAAA-TTTT_L013_R1.fastq.gz",
		"abc123  UMCG_CSV_103373.csv",
		"",
	} {
		if _, ok := ParseManifestLine(line); ok {
			t.Errorf("Did not expect %q to match", line)
		}
	}
}

func TestParseSampleName(t *testing.T) {
	sn, ok := ParseSampleName("QXTR_426-Exoom_v1-123456")
	if !ok {
		t.Fatal("Expected sample name to match")
	}
	if sn.Project != "QXTR_426-Exoom_v1" || sn.ProcessStepID != "123456" {
		t.Errorf("Mismatch: %+v", sn)
	}

	sn, ok = ParseSampleName("PROJA-55")
	if !ok || sn.Project != "PROJA" || sn.ProcessStepID != "55" {
		t.Errorf("Mismatch: %+v", sn)
	}

	for _, value := range []string{"QXTR_222-Exoom_v1", "PROJA-", "-55", "PROJ A-55"} {
		if _, ok := ParseSampleName(value); ok {
			t.Errorf("Did not expect %q to match", value)
		}
	}
}

func TestParseGSID(t *testing.T) {
	id, ok := ParseGSID("103373-032-059")
	if !ok || id.Batch != "103373-032" || id.Sample != "059" {
		t.Errorf("Mismatch: %+v", id)
	}

	if _, ok := ParseGSID("103373-032"); ok {
		t.Error("Did not expect a two part ID to match")
	}
}

func TestSplitBarcodes(t *testing.T) {
	b1, b2, ok := SplitBarcodes("AAAA-TTTT")
	if !ok || b1 != "AAAA" || b2 != "TTTT" {
		t.Errorf("Mismatch: %s %s", b1, b2)
	}
	if JoinBarcodes(b1, b2) != "AAAA-TTTT" {
		t.Error("JoinBarcodes is not the inverse of SplitBarcodes")
	}

	for _, pair := range []string{"AAAA", "AAAA-", "-TTTT", "AAAA-TTTT-GGGG", ""} {
		if _, _, ok := SplitBarcodes(pair); ok {
			t.Errorf("Did not expect %q to split", pair)
		}
	}
}
