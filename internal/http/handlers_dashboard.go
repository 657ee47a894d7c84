package http

import (
	"context"
	"fmt"
	"net/http"

	"tally/internal/analytics"
	"tally/internal/impulse"
	"tally/internal/log"
)

// handleDashboard serves the analytics view model for ?date= (default
// today). Results are cached per collection version and day; concurrent
// misses for the same key share one computation.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r, s.now())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	key := fmt.Sprintf("v%d|%s", s.svc.Version(), ref.ISO())
	if d, ok := s.dashCache.Get(key); ok {
		NewJSONResponse().Header("X-Cache", "HIT").Data(d).Write(w)
		return
	}

	// The shared computation must not die with the first caller's request.
	ctx := context.WithoutCancel(r.Context())
	v, _, _ := s.dashGroup.Do(key, func() (any, error) {
		exps := s.svc.Load(ctx)
		d := analytics.BuildDashboard(exps, s.svc.Registry(), ref)
		s.dashCache.Set(key, d)
		return d, nil
	})
	log.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard computed", "key", key)
	NewJSONResponse().Header("X-Cache", "MISS").Data(v.(analytics.Dashboard)).Write(w)
}

type impulseResponse struct {
	Month     string        `json:"month"`
	Stats     impulse.Stats `json:"stats"`
	Threshold int           `json:"threshold"`
	NextWarns bool          `json:"next_warns"`
}

func (s *Server) handleImpulseStats(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r, s.now())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	stats := impulse.MonthlyStats(s.svc.Load(r.Context()), ref)
	NewJSONResponse().Data(impulseResponse{
		Month:     ref.MonthKey(),
		Stats:     stats,
		Threshold: impulse.Threshold,
		NextWarns: impulse.ShouldWarn(stats),
	}).Write(w)
}
