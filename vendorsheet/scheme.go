package vendorsheet

import (
	"fmt"
	"strings"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/pattern"
	"github.com/carbocation/gsmerge/table"
)

// Scheme selects the composite key that matches in-house samples with vendor
// samples.
type Scheme int

const (
	// SchemeAuto is resolved from the vendor samplesheet by DetectScheme.
	SchemeAuto Scheme = iota

	// SchemeBarcodeProject keys samples on Index1-Index2-project. The vendor
	// identity column holds the bare project name. This is the layout for
	// pools prepped in our own lab.
	SchemeBarcodeProject

	// SchemeProcessStep keys samples on the process step ID, parsed from a
	// vendor identity of the form project-processStepID.
	SchemeProcessStep
)

var schemeNames = map[Scheme]string{
	SchemeAuto:           "auto",
	SchemeBarcodeProject: "barcode-project",
	SchemeProcessStep:    "process-step",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme is the inverse of Scheme.String.
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}

	return SchemeAuto, fmt.Errorf("%w: unknown identity scheme %q; valid schemes are auto, barcode-project and process-step", gsmerge.ErrConfig, name)
}

// Column names of the GenomeScan samplesheet.
const (
	ColumnSampleID = "Sample_ID"
	ColumnID       = "ID"
	ColumnGSID     = "GS_ID"
	ColumnIndex1   = "Index1"
	ColumnIndex2   = "Index2"
)

// Column names of the in-house samplesheets that take part in the identity
// key.
const (
	InternalProject       = "project"
	InternalBarcode       = "barcode"
	InternalBarcode2      = "barcode2"
	InternalProcessStepID = "sampleProcessStepID"
)

// IdentityColumn returns the name of the column that identifies samples in a
// GenomeScan samplesheet. Pools prepped in our own lab use Sample_ID; samples
// prepped at GenomeScan use ID.
func IdentityColumn(t *table.Table) (string, error) {
	switch {
	case t.Has(ColumnSampleID):
		return ColumnSampleID, nil
	case t.Has(ColumnID):
		return ColumnID, nil
	}

	return "", fmt.Errorf("%w: cannot find sample ID column name (%s or %s) in the GenomeScan samplesheet", gsmerge.ErrFormat, ColumnSampleID, ColumnID)
}

// DetectScheme picks the identity scheme for a samplesheet: process steps if
// the identity column is ID, or if every non-empty identity parses as
// project-processStepID; barcodes plus project otherwise.
func DetectScheme(t *table.Table, idColumn string) Scheme {
	if idColumn == ColumnID {
		return SchemeProcessStep
	}

	seen := 0
	for i := range t.Rows {
		value, _ := t.Get(i, idColumn)
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, ok := pattern.ParseSampleName(value); !ok {
			return SchemeBarcodeProject
		}
		seen++
	}

	if seen == 0 {
		return SchemeBarcodeProject
	}

	return SchemeProcessStep
}

// InternalKey composes the identity key of an in-house samplesheet row in the
// same way Build does for vendor rows, surrounding whitespace included.
func (s Scheme) InternalKey(get func(column string) (string, bool)) (string, error) {
	switch s {
	case SchemeProcessStep:
		stepID, ok := get(InternalProcessStepID)
		if !ok {
			return "", fmt.Errorf("%w: in-house samplesheet has no %s column", gsmerge.ErrFormat, InternalProcessStepID)
		}
		return strings.TrimSpace(stepID), nil

	case SchemeBarcodeProject:
		values := make([]string, 0, 3)
		for _, column := range []string{InternalBarcode, InternalBarcode2, InternalProject} {
			value, ok := get(column)
			if !ok {
				return "", fmt.Errorf("%w: in-house samplesheet has no %s column", gsmerge.ErrFormat, column)
			}
			values = append(values, strings.TrimSpace(value))
		}
		return barcodeProjectKey(pattern.JoinBarcodes(values[0], values[1]), values[2]), nil
	}

	return "", fmt.Errorf("%w: identity scheme %s was never resolved", gsmerge.ErrConfig, s)
}

func barcodeProjectKey(barcodes, project string) string {
	return barcodes + pattern.BarcodeSeparator + project
}
