package http

import (
	"net/http"

	"tally/internal/analytics"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	// Load first so categories only present in storage are discovered.
	s.svc.Load(r.Context())
	NewJSONResponse().Data(s.svc.Registry().All()).Write(w)
}

func (s *Server) handleGroupedCategories(w http.ResponseWriter, r *http.Request) {
	exps := s.svc.Load(r.Context())
	NewJSONResponse().Data(analytics.GroupByCategory(exps, s.svc.Registry())).Write(w)
}
