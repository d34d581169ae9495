package reconcile

import (
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

// Summary describes a finished merge.
type Summary struct {
	Projects   int
	Samples    int
	OutputRows int

	// Lanes per in-house sample across all projects
	MeanLanes   float64
	MedianLanes float64
	MaxLanes    float64

	UnresolvedFlowcells []string
	Outputs             []string
}

func newSummary(expansions []*Expansion, unresolved []string) *Summary {
	s := &Summary{
		Projects:            len(expansions),
		UnresolvedFlowcells: unresolved,
		Outputs:             make([]string, 0, len(expansions)),
	}

	lanesPerSample := make([]float64, 0)
	for _, exp := range expansions {
		s.OutputRows += exp.Sheet.Len()
		lanesPerSample = append(lanesPerSample, exp.LanesPerSample...)
	}
	s.Samples = len(lanesPerSample)

	// The stats package errors on empty input; zero is the right answer there
	if len(lanesPerSample) > 0 {
		s.MeanLanes, _ = stats.Mean(lanesPerSample)
		s.MedianLanes, _ = stats.Median(lanesPerSample)
		s.MaxLanes, _ = stats.Max(lanesPerSample)
	}

	return s
}

// Log writes the summary to logger, warning about unresolved flowcells.
func (s *Summary) Log(logger *zap.Logger) {
	logger.Info("Merge summary",
		zap.Int("projects", s.Projects),
		zap.Int("samples", s.Samples),
		zap.Int("rows", s.OutputRows),
		zap.Float64("meanLanesPerSample", s.MeanLanes),
		zap.Float64("medianLanesPerSample", s.MedianLanes),
		zap.Float64("maxLanesPerSample", s.MaxLanes))

	if len(s.UnresolvedFlowcells) > 0 {
		logger.Warn("Some lanes lack run coordinates because their flowcell had no converted run directory",
			zap.Strings("flowcells", s.UnresolvedFlowcells))
	}
}
