package server

import "time"

const sweepInterval = time.Hour

// startRetentionSweep periodically drops finished runs older than the
// configured retention window. Queued and running runs are never swept.
func (s *Server) startRetentionSweep() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			s.sweepRuns(time.Now())
		}
	}()
}

// sweepRuns removes expired finished runs and returns how many were dropped
func (s *Server) sweepRuns(now time.Time) int {
	retention := time.Duration(s.Config.RetentionHours) * time.Hour
	cutoff := now.Add(-retention)

	s.RunMutex.Lock()
	defer s.RunMutex.Unlock()

	removed := 0
	for id, run := range s.Runs {
		if run.Status != StatusCompleted && run.Status != StatusFailed {
			continue
		}
		if run.EndTime.Before(cutoff) {
			delete(s.Runs, id)
			removed++
		}
	}

	if removed > 0 {
		s.Logger.Debug().
			Int("removed", removed).
			Int("remaining", len(s.Runs)).
			Msg("Swept expired runs")
	}

	return removed
}
