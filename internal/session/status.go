package session

import (
	"time"

	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

// Status builds the read-only projection served by the debug listener.
func (s *Session) Status() types.StatusResponse {
	cs := s.cache.Status()

	s.mu.Lock()
	st := s.state
	lastErr := s.lastErr
	stats := s.lastStats
	var runID string
	if s.cur != nil {
		runID = s.cur.id
	}
	created := s.createdAt
	s.mu.Unlock()

	resp := types.StatusResponse{
		State:   st,
		Running: s.running.Load(),
		RunID:   runID,
		Model: types.ModelStatus{
			ID:       s.cfg.Model.ID,
			Phase:    string(cs.Phase),
			Progress: cs.Progress,
			SizeMB:   s.cfg.Model.SizeMB,
		},
		LastError:      lastErr,
		UptimeSeconds:  int64(time.Since(created).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if stats != nil {
		resp.TokensPerSecond = stats.TokensPerSecond
	}
	return resp
}
