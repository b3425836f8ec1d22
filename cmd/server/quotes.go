package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/metrics"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/quotetext"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/store"
	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/validation"
)

type quotesListResponse struct {
	Query  string       `json:"query"`
	Quotes []summaryDTO `json:"quotes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleRates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, mapRates(s.rates))
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeEstimate(body)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}

	res := pricing.Compute(req, s.rates, s.now())
	metrics.ObserveQuote(metrics.KindEstimate, res)

	s.writeJSON(w, http.StatusOK, mapQuote(res))
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	sub, err := validation.DecodeSubmission(body)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}

	res := pricing.Compute(sub.Request, s.rates, s.now())
	rec, err := s.quotes.Save(r.Context(), store.Submission{
		ClientName:  sub.ClientName,
		ClientEmail: sub.ClientEmail,
		Company:     sub.Company,
		Message:     sub.Message,
	}, sub.Request, res)
	if err != nil {
		s.internalError(w, r, "failed to save quote", err)
		return
	}
	metrics.ObserveQuote(metrics.KindSubmission, res)

	s.log.Info("quote submitted",
		zap.String("quote_id", rec.ID),
		zap.String("category", string(res.Category)),
		zap.String("total", res.TotalOneTimePrice.String()),
	)

	w.Header().Set("Location", "/api/quotes/"+rec.ID)
	s.writeJSON(w, http.StatusCreated, mapRecord(rec))
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.quotes.List(r.Context(), query)
	if err != nil {
		s.internalError(w, r, "failed to load quotes", err)
		return
	}

	s.writeJSON(w, http.StatusOK, quotesListResponse{Query: query, Quotes: mapSummaries(quotes)})
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.quoteID(w, r)
	if !ok {
		return
	}
	rec, ok := s.loadQuote(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, mapRecord(rec))
}

func (s *server) handleQuoteStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.quoteID(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var payload statusRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	status, err := store.ParseStatus(payload.Status)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "invalid status", []validation.ValidationError{{
			Field:   "status",
			Message: err.Error(),
			Code:    "INVALID_ENUM_VALUE",
		}})
		return
	}

	if err := s.quotes.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "quote not found", nil)
			return
		}
		s.internalError(w, r, "failed to update quote status", err)
		return
	}
	metrics.QuoteStatusChanges.WithLabelValues(string(status)).Inc()
	s.log.Info("quote status changed", zap.String("quote_id", id), zap.String("status", string(status)))

	rec, ok := s.loadQuote(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, mapRecord(rec))
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	id, ok := s.quoteID(w, r)
	if !ok {
		return
	}
	rec, ok := s.loadQuote(w, r, id)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := quotetext.Render(&buf, quotetext.Document{
		Reference: rec.ID,
		IssuedAt:  rec.CreatedAt,
		Client: quotetext.Client{
			Name:    rec.Submission.ClientName,
			Email:   rec.Submission.ClientEmail,
			Company: rec.Submission.Company,
		},
		ContactEmail: s.contactEmail,
		Result:       rec.Result,
	})
	if err != nil {
		s.internalError(w, r, "failed to render quote", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.quotes.Stats(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to load quote stats", err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapStats(stats))
}

// quoteID reads the {id} route parameter, answering 400 when it is blank.
func (s *server) quoteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "invalid quote id", nil)
		return "", false
	}
	return id, true
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request, id string) (store.Record, bool) {
	rec, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "quote not found", nil)
			return store.Record{}, false
		}
		s.internalError(w, r, "failed to load quote", err)
		return store.Record{}, false
	}
	return rec, true
}

func (s *server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body", nil)
		return nil, false
	}
	return body, true
}

func (s *server) writeDecodeError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		s.writeError(w, http.StatusUnprocessableEntity, "validation failed", verrs)
	case errors.Is(err, validation.ErrMalformed):
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
	case errors.Is(err, pricing.ErrUnknownLabel):
		s.writeError(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
	default:
		s.log.Error("failed to decode request", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to decode request", nil)
	}
}
