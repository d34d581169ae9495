package gsmerge

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectDataType(t *testing.T) {
	type test struct {
		head     []byte
		expected DataType
	}

	tests := []test{
		{[]byte{0x1f, 0x8b, 0x08, 0x00}, DataTypeGzip},
		{[]byte{0x50, 0x4b, 0x03, 0x04, 0x14}, DataTypeZip},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, DataTypeXZ},
		{[]byte{0x42, 0x5a, 0x68, 0x39}, DataTypeBZip2},
		{[]byte("GS_ID,"), DataTypeNoCompression},
		{[]byte{0x1f}, DataTypeNoCompression},
	}

	for _, tc := range tests {
		if got := DetectDataType(tc.head); got != tc.expected {
			t.Errorf("%x: expected %d, got %d", tc.head, tc.expected, got)
		}
	}
}

func TestMaybeDecompressReadCloser(t *testing.T) {
	payload := "aa  FLOWCELL1_1001-01-001_AAAA-TTTT_L003_R1.fastq.gz\n"

	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	zw.Write([]byte(payload))
	zw.Close()

	expectations := map[string]string{"gzip": payload, "plain": payload, "short": "a\n", "empty": ""}
	inputs := map[string][]byte{"gzip": buf.Bytes(), "plain": []byte(payload), "short": []byte("a\n"), "empty": {}}

	for name, input := range inputs {
		rc, err := MaybeDecompressReadCloser(io.NopCloser(bytes.NewReader(input)))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		rc.Close()

		if expected := expectations[name]; string(got) != expected {
			t.Errorf("%s: expected %q, got %q", name, expected, got)
		}
	}

	unixCompressed := []byte{0x1f, 0x9d, 0x90, 0x61, 0x00, 0x00, 0x00}
	if _, err := MaybeDecompressReadCloser(io.NopCloser(bytes.NewReader(unixCompressed))); !errors.Is(err, ErrUnixCompress) {
		t.Errorf("Expected ErrUnixCompress for a .Z stream, got %v", err)
	}
}

func TestDetermineDelimiter(t *testing.T) {
	inputs := map[string]rune{
		"a;b;c\n1;2;3\n4;5;6\n":       ';',
		"a\tb\tc\n1\t2\t3\n4\t5\t6\n": '\t',
		"a,b,c\n1,2,3\n4,5,6\n":       ',',
	}

	for input, expected := range inputs {
		if got := DetermineDelimiter(strings.NewReader(input)); got != expected {
			t.Errorf("%q: expected %q, got %q", input, expected, got)
		}
	}
}

func TestJoinAndBase(t *testing.T) {
	if got := Join("gs://bucket/batch/", "checksums.md5"); got != "gs://bucket/batch/checksums.md5" {
		t.Errorf("Unexpected google storage join %q", got)
	}
	if got := Join("/data/batch", "checksums.md5"); got != filepath.Join("/data/batch", "checksums.md5") {
		t.Errorf("Unexpected local join %q", got)
	}
	if got := Base("gs://bucket/batch/PROJA.csv"); got != "PROJA.csv" {
		t.Errorf("Unexpected google storage base %q", got)
	}

	bucket, object, err := splitGoogleStoragePath("gs://bucket/batch/")
	if err != nil || bucket != "bucket" || object != "batch" {
		t.Errorf("Unexpected split %q %q %v", bucket, object, err)
	}
	if _, _, err := splitGoogleStoragePath("gs:///batch"); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected a configuration error, got %v", err)
	}
}

func TestSameLocation(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skip(err)
	}

	type test struct {
		a, b     string
		expected bool
	}

	tests := []test{
		{dir, dir + string(filepath.Separator), true},
		{dir, link, true},
		{dir, t.TempDir(), false},
		{dir, filepath.Join(dir, "absent"), false},
		{"gs://bucket/a/", "gs://bucket/a", true},
		{"gs://bucket/a", dir, false},
	}

	for _, tc := range tests {
		got, err := SameLocation(tc.a, tc.b)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.expected {
			t.Errorf("%s vs %s: expected %v, got %v", tc.a, tc.b, tc.expected, got)
		}
	}
}

func TestLocalFileAccess(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	for _, dir := range []string{"200101_SEQ001_0042_FLOWCELL1", filepath.Join("Raw_data", "200102_SEQ002_0043_FLOWCELL2")} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"CSV_UMCG_1001.csv", "UMCG_CSV_1001.xls", "checksums.md5"} {
		if err := WriteFile(ctx, nil, filepath.Join(root, name), []byte(name)); err != nil {
			t.Fatal(err)
		}
	}

	dirs, err := ListDirNames(ctx, nil, root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"200101_SEQ001_0042_FLOWCELL1", "Raw_data", "200102_SEQ002_0043_FLOWCELL2"}, dirs); diff != "" {
		t.Error(diff)
	}

	matches, err := Glob(ctx, nil, root, "CSV_UMCG_*.csv")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "CSV_UMCG_1001.csv")}, matches); diff != "" {
		t.Error(diff)
	}
	if _, err := Glob(ctx, nil, root, "["); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected a configuration error for a bad pattern, got %v", err)
	}

	for _, content := range []string{"", "a\n"} {
		if err := WriteFile(ctx, nil, filepath.Join(root, "short.csv"), []byte(content)); err != nil {
			t.Fatal(err)
		}
		data, err := ReadFile(ctx, nil, filepath.Join(root, "short.csv"))
		if err != nil {
			t.Fatalf("%q: %v", content, err)
		}
		if string(data) != content {
			t.Errorf("Expected %q, got %q", content, data)
		}
	}

	if err := WriteFile(ctx, nil, filepath.Join(root, "checksums.md5.Z"), []byte{0x1f, 0x9d, 0x90, 0x61, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(ctx, nil, filepath.Join(root, "checksums.md5.Z")); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected a format error for a .Z file, got %v", err)
	}

	data, err := ReadFile(ctx, nil, filepath.Join(root, "checksums.md5"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "checksums.md5" {
		t.Errorf("Unexpected content %q", data)
	}

	if err := CheckDir(ctx, nil, root); err != nil {
		t.Error(err)
	}
	for _, bad := range []string{filepath.Join(root, "checksums.md5"), filepath.Join(root, "absent")} {
		if err := CheckDir(ctx, nil, bad); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected a configuration error, got %v", bad, err)
		}
	}

	for _, bad := range []string{root, filepath.Join(root, "absent")} {
		if _, err := Open(ctx, nil, bad); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected a configuration error, got %v", bad, err)
		}
	}

	if _, err := Open(ctx, nil, "gs://bucket/checksums.md5"); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected a configuration error without a storage client, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	for _, path := range []string{"/data/batch", "gs://bucket/batch", "relative/~/path"} {
		got, err := ExpandHome(path)
		if err != nil {
			t.Fatal(err)
		}
		if got != path {
			t.Errorf("Expected %s untouched, got %s", path, got)
		}
	}

	got, err := ExpandHome("~/batch")
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(got, "~") || filepath.Base(got) != "batch" {
		t.Errorf("Expected the home directory to be expanded, got %s", got)
	}
}
