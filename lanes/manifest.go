package lanes

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/pattern"
	"github.com/carbocation/pfx"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v3"
)

// Key identifies the FastQ files of one vendor sample: its dual index and its
// GenomeScan ID.
type Key struct {
	Barcodes string
	VendorID string
}

func (k Key) String() string {
	return k.Barcodes + pattern.BarcodeSeparator + k.VendorID
}

// LaneRecord is one lane of one flowcell on which a vendor sample was
// sequenced. The run coordinates are null when the flowcell could not be
// matched with a converted run directory.
type LaneRecord struct {
	Lane      string
	Barcodes  string
	Flowcell  string
	StartDate null.String
	Sequencer null.String
	Run       null.String
}

// Resolved reports whether all run coordinates are known.
func (lr LaneRecord) Resolved() bool {
	return lr.StartDate.Valid && lr.Sequencer.Valid && lr.Run.Valid
}

// ManifestOptions control how the checksum manifest is parsed.
type ManifestOptions struct {
	// AllowUnresolvedFlowcells keeps lanes whose flowcell has no run
	// directory, with null run coordinates, instead of failing.
	AllowUnresolvedFlowcells bool
}

// ManifestIndex maps each vendor sample to its lanes, in the order in which
// the manifest lists them.
type ManifestIndex struct {
	byKey      map[Key][]LaneRecord
	unresolved map[string]struct{}
	lines      int
}

// BuildManifestIndex scans a checksum manifest and joins every read-1 FastQ
// entry against the run index. Lines that are not read-1 FastQ entries are
// skipped.
func BuildManifestIndex(r io.Reader, runs *RunIndex, opts ManifestOptions, logger *zap.Logger) (*ManifestIndex, error) {
	mi := &ManifestIndex{
		byKey:      make(map[Key][]LaneRecord),
		unresolved: make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		entry, ok := pattern.ParseManifestLine(scanner.Text())
		if !ok {
			continue
		}
		mi.lines++

		key := Key{Barcodes: entry.Barcodes, VendorID: entry.VendorID}
		record := LaneRecord{
			Lane:     entry.Lane,
			Barcodes: entry.Barcodes,
			Flowcell: entry.Flowcell,
		}

		if rc, found := runs.Lookup(entry.Flowcell); found {
			record.StartDate = null.StringFrom(rc.StartDate)
			record.Sequencer = null.StringFrom(rc.Sequencer)
			record.Run = null.StringFrom(rc.Run)
		} else if opts.AllowUnresolvedFlowcells {
			if _, seen := mi.unresolved[entry.Flowcell]; !seen {
				logger.Warn("No converted run directory found for flowcell; its lanes will lack run coordinates", zap.String("flowcell", entry.Flowcell))
			}
			mi.unresolved[entry.Flowcell] = struct{}{}
		} else {
			return nil, fmt.Errorf("%w: line %d of the manifest references flowcell %s, for which no converted run directory was found", gsmerge.ErrConsistency, lineNumber, entry.Flowcell)
		}

		for _, known := range mi.byKey[key] {
			if known.Flowcell == record.Flowcell && known.Lane == record.Lane {
				return nil, fmt.Errorf("%w: line %d of the manifest lists lane %s of flowcell %s for %s a second time", gsmerge.ErrConsistency, lineNumber, record.Lane, record.Flowcell, key)
			}
		}

		mi.byKey[key] = append(mi.byKey[key], record)
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	logger.Info("Indexed checksum manifest",
		zap.Int("fastqs", mi.lines),
		zap.Int("samples", len(mi.byKey)))

	return mi, nil
}

// Lanes returns a copy of the lanes of one vendor sample.
func (mi *ManifestIndex) Lanes(key Key) ([]LaneRecord, bool) {
	records, ok := mi.byKey[key]
	if !ok {
		return nil, false
	}

	out := make([]LaneRecord, len(records))
	copy(out, records)

	return out, true
}

// Len is the number of distinct vendor samples in the manifest.
func (mi *ManifestIndex) Len() int {
	return len(mi.byKey)
}

// Unresolved lists the flowcells, sorted, for which no run directory was
// found.
func (mi *ManifestIndex) Unresolved() []string {
	out := make([]string, 0, len(mi.unresolved))
	for flowcell := range mi.unresolved {
		out = append(out, flowcell)
	}
	sort.Strings(out)

	return out
}
