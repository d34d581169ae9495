package lanes

import (
	"fmt"

	"github.com/carbocation/gsmerge"
	"github.com/carbocation/gsmerge/pattern"
	"go.uber.org/zap"
)

// RunCoordinate is derived from the name of one converted-output directory.
type RunCoordinate struct {
	Flowcell  string
	Sequencer string
	Run       string
	StartDate string
}

// RunIndex maps a flowcell to the run it was sequenced in. It is built once
// and is read-only afterwards.
type RunIndex struct {
	byFlowcell map[string]RunCoordinate
}

// NewRunIndex indexes the directory names that follow the run directory
// grammar; other names are skipped. The same flowcell may be seen more than
// once (e.g., nested copies of a run directory), but only if every copy agrees
// on the run coordinates.
func NewRunIndex(dirNames []string, logger *zap.Logger) (*RunIndex, error) {
	ri := &RunIndex{byFlowcell: make(map[string]RunCoordinate)}

	for _, name := range dirNames {
		rd, ok := pattern.ParseRunDir(name)
		if !ok {
			logger.Debug("Skipping dir whose name is not in the expected format for a dir containing converted FastQ files", zap.String("dir", name))
			continue
		}

		rc := RunCoordinate{
			Flowcell:  rd.Flowcell,
			Sequencer: rd.Sequencer,
			Run:       rd.Run,
			StartDate: rd.StartDate,
		}

		if known, exists := ri.byFlowcell[rc.Flowcell]; exists {
			if known != rc {
				return nil, fmt.Errorf("%w: flowcell %s belongs to two runs: %+v and %+v", gsmerge.ErrConsistency, rc.Flowcell, known, rc)
			}
			continue
		}

		ri.byFlowcell[rc.Flowcell] = rc
		logger.Debug("Parsed run coordinates from converted FastQ output dir",
			zap.String("dir", name),
			zap.String("sequencingStartDate", rc.StartDate),
			zap.String("sequencer", rc.Sequencer),
			zap.String("run", rc.Run))
	}

	return ri, nil
}

// Lookup returns the run coordinates of a flowcell.
func (ri *RunIndex) Lookup(flowcell string) (RunCoordinate, bool) {
	rc, ok := ri.byFlowcell[flowcell]
	return rc, ok
}

// Len is the number of distinct flowcells.
func (ri *RunIndex) Len() int {
	return len(ri.byFlowcell)
}
