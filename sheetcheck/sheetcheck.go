// Package sheetcheck validates in-house samplesheets before they are used for
// a run: the columns a pipeline needs must be present, and the cells that must
// never be left blank must be filled.
package sheetcheck

import (
	"bytes"
	"fmt"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/table"
)

// Mode selects which rules a samplesheet is checked against.
type Mode int

const (
	// ModeComplete checks a complete samplesheet, for runs sequenced in
	// house.
	ModeComplete Mode = iota

	// ModeGenomeScan checks an in-house samplesheet for a GenomeScan batch,
	// which must not carry run coordinates yet.
	ModeGenomeScan
)

var modeNames = map[Mode]string{
	ModeComplete:   "complete",
	ModeGenomeScan: "genomescan",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name, as given on the command line, to a Mode.
func ParseMode(name string) (Mode, error) {
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}

	return ModeComplete, fmt.Errorf("%w: unknown samplesheet check mode %q (use complete or genomescan)", gsmerge.ErrConfig, name)
}

// RequiredColumns lists the columns a samplesheet must have in the given mode.
func RequiredColumns(mode Mode) []string {
	if mode == ModeGenomeScan {
		return []string{"externalSampleID", "project", "sequencingStartDate", "seqType", "prepKit", "capturingKit", "barcode", "barcode2", "barcodeType"}
	}

	return []string{"externalSampleID", "project", "sequencer", "sequencingStartDate", "flowcell", "run", "lane", "seqType", "prepKit", "capturingKit", "barcode", "barcodeType"}
}

// placeholderColumns may not be empty but accept None for "not applicable".
var placeholderColumns = map[string]struct{}{
	"capturingKit": {},
	"barcode":      {},
	"barcode2":     {},
	"barcodeType":  {},
}

// runColumns are filled in from the GenomeScan delivery, so they must be
// empty beforehand.
var runColumns = []string{"sequencer", "run", "flowcell", "lane"}

// Problem is one reason a samplesheet was rejected. Line is the data line,
// counting from 1; it is 0 for problems with the file as a whole.
type Problem struct {
	Line    int
	Column  string
	Message string
}

func (p Problem) String() string {
	if p.Line == 0 {
		return p.Message
	}

	return fmt.Sprintf("Line %d: %s", p.Line, p.Message)
}

// Check returns every problem of a samplesheet. An empty result means the
// samplesheet is fine.
func Check(t *table.Table, mode Mode) []Problem {
	problems := make([]Problem, 0)

	if t.Len() == 0 {
		return append(problems, Problem{Message: "The complete file is empty?!"})
	}

	required := RequiredColumns(mode)
	present := make([]string, 0, len(required))
	for _, column := range required {
		if !t.Has(column) {
			problems = append(problems, Problem{
				Column:  column,
				Message: fmt.Sprintf("One required column is missing (or has a trailing space): %s", column),
			})
			continue
		}
		present = append(present, column)
	}

	for i := range t.Rows {
		line := i + 1

		for _, column := range present {
			if value, _ := t.Get(i, column); value != "" {
				continue
			}

			msg := fmt.Sprintf("The variable %s is empty!", column)
			if _, ok := placeholderColumns[column]; ok {
				msg += " Please fill in None (this to be sure that is not missing)"
			}
			problems = append(problems, Problem{Line: line, Column: column, Message: msg})
		}

		if mode != ModeGenomeScan {
			continue
		}
		for _, column := range runColumns {
			if value, _ := t.Get(i, column); value != "" {
				problems = append(problems, Problem{
					Line:    line,
					Column:  column,
					Message: fmt.Sprintf("For Genomescan runs the '%s' in the samplesheet must be empty.", column),
				})
			}
		}
	}

	return problems
}

// CheckBytes parses a samplesheet and checks it. A file without any content is
// reported as a problem rather than an error.
func CheckBytes(data []byte, mode Mode) ([]Problem, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Problem{{Message: "The complete file is empty?!"}}, nil
	}

	t, err := table.Read(bytes.NewReader(data), table.ReadOptions{})
	if err != nil {
		return nil, err
	}

	return Check(t, mode), nil
}

// Report renders the outcome of a check the way the pipeline expects to find
// it in the log file: one problem per line followed by a verdict, or OK.
func Report(name string, problems []Problem) string {
	if len(problems) == 0 {
		return "OK\n"
	}

	buf := &bytes.Buffer{}
	for _, p := range problems {
		fmt.Fprintln(buf, p)
	}
	fmt.Fprintf(buf, "Samplesheet %s failed.\n", name)

	return buf.String()
}
