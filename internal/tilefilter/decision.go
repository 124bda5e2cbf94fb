package tilefilter

import (
	"fmt"
	"time"
)

type Action string

const (
	// ActionCopied means the tile was coherent and passed through unchanged.
	ActionCopied Action = "copied"
	// ActionCorrected means the tile was split and only the largest cluster
	// was written out.
	ActionCorrected Action = "corrected"
	ActionFailed    Action = "failed"
	// ActionSkipped covers resume hits and cancellation. Cache hits keep
	// their original action and set Cached instead.
	ActionSkipped Action = "skipped"
)

// Decision is the audit record for one processed tile. One CSV row per tile.
type Decision struct {
	Tile          string `csv:"tile"`
	Split         bool   `csv:"is_split"`
	Points        int    `csv:"points"`
	KeptPoints    int    `csv:"kept_points"`
	DroppedPoints int    `csv:"dropped_points"`
	Clusters      int    `csv:"clusters"`
	Action        Action `csv:"action"`
	ErrorKind     string `csv:"error_kind"`
	Error         string `csv:"error"`
	Cached        bool   `csv:"cached"`

	// PlotErr carries a non-fatal QA-image failure to the aggregator, which
	// owns all console output. Not part of the report.
	PlotErr string `csv:"-"`
}

type Summary struct {
	Total     int
	Corrected int
	Unchanged int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

func summarize(decisions []Decision, elapsed time.Duration) Summary {
	s := Summary{Total: len(decisions), Elapsed: elapsed}
	for _, d := range decisions {
		switch d.Action {
		case ActionCorrected:
			s.Corrected++
		case ActionCopied:
			s.Unchanged++
		case ActionFailed:
			s.Failed++
		case ActionSkipped:
			s.Skipped++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("total: %d, corrected: %d, unchanged: %d, failed: %d, skipped: %d (%.2fs)",
		s.Total, s.Corrected, s.Unchanged, s.Failed, s.Skipped, s.Elapsed.Seconds())
}
