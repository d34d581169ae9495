package gsmerge

import "errors"

// Every fatal condition of a merge belongs to one of these classes. Callers
// wrap them with fmt.Errorf("%w: ...") so that errors.Is can tell them apart.
var (
	// ErrConfig covers unusable inputs: identical input and output
	// directories, missing or unreadable files and directories.
	ErrConfig = errors.New("configuration error")

	// ErrFormat covers input that does not follow the expected layout: no
	// identity column, unparseable identifiers, barcode pairs that do not
	// split into two halves.
	ErrFormat = errors.New("format error")

	// ErrConsistency covers disagreements between the vendor batch and the
	// in-house samplesheets.
	ErrConsistency = errors.New("consistency error")
)
