package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int // discovered assets
	Current          int // jobs that reached processing
	Processed        int
	Skipped          int
	Failed           int
	Rejected         int // lost a QA prefix collision
	TotalInputBytes  int64
	TotalOutputBytes int64 // exported files only
}

// SpaceSaved returns the aggregate byte difference between inputs and
// exports. Positive means exports are smaller.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// OK reports whether the run finished without failed jobs.
func (s *RunStats) OK() bool { return s.Failed == 0 }
