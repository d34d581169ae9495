package gsmerge

import (
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// SheetDelimiters are the delimiters that samplesheets are known to be
// exported with.
var SheetDelimiters = []rune{',', ';', '\t'}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file. Candidates that are not in
// SheetDelimiters are ignored; if nothing usable is found, a comma is assumed.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	for _, candidate := range delimiters {
		if len(candidate) != 1 {
			continue
		}
		for _, known := range SheetDelimiters {
			if rune(candidate[0]) == known {
				return known
			}
		}
	}

	return ','
}
