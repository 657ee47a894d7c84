package http

import (
	"errors"
	"net/http"

	"tally/internal/analytics"
	"tally/internal/core"
	"tally/internal/impulse"
	"tally/internal/log"
	"tally/internal/services"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	exps := s.svc.Load(r.Context())
	NewJSONResponse().Data(analytics.Overview(exps, s.svc.Registry())).Write(w)
}

type confirmationRequired struct {
	Error    string           `json:"error"`
	Message  string           `json:"message"`
	Decision impulse.Decision `json:"decision"`
}

// handleAddExpense commits an expense. When the impulse policy warns and
// the request does not carry confirm=true, it answers 409 with the prompt;
// the client resubmits with confirm=true to proceed.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		if p.TooLarge() {
			ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			return
		}
		BadRequestError("invalid request body").Write(w)
		return
	}
	req, err := parseExpenseRequest(p)
	if err != nil {
		logger.InfoContext(ctx, "Rejected expense form", log.FieldError, err)
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	res, err := s.svc.AddExpense(ctx, req.Expense, services.Preapproved(req.Confirm))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to add expense", log.FieldError, err)
		InternalServerError("could not save expense").Write(w)
		return
	}
	if !res.Committed {
		NewJSONResponse().
			Status(http.StatusConflict).
			Data(confirmationRequired{
				Error:    "impulse purchase needs confirmation",
				Message:  res.Decision.Message(),
				Decision: res.Decision,
			}).
			Write(w)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Data(res).Write(w)
}

func (s *Server) handleResetExpenses(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to reset expenses", log.FieldError, err)
		InternalServerError("could not reset expenses").Write(w)
		return
	}
	s.dashCache.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadTranscript returns the stored collection as saved.
func (s *Server) handleLoadTranscript(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.svc.Load(r.Context())).Write(w)
}

type saveTranscriptResponse struct {
	Saved int `json:"saved"`
}

// handleSaveTranscript replaces the collection with the posted JSON array.
func (s *Server) handleSaveTranscript(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if p.TooLarge() {
		ErrorResponse(http.StatusRequestEntityTooLarge, "collection too large").Write(w)
		return
	}
	if p.err != nil {
		BadRequestError("could not read body").Write(w)
		return
	}
	recs, err := core.DecodeRecords(p.body)
	if err != nil {
		msg := "invalid collection"
		if errors.Is(err, core.ErrMalformedCollection) {
			msg = "collection must be a JSON array"
		}
		BadRequestError(msg).Write(w)
		return
	}

	exps, err := s.svc.Replace(r.Context(), recs)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save transcript", log.FieldError, err)
		InternalServerError("could not save collection").Write(w)
		return
	}
	s.dashCache.Clear()
	NewJSONResponse().Data(saveTranscriptResponse{Saved: len(exps)}).Write(w)
}
