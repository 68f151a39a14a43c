package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/search"
)

// Answerer is the question-answering surface served over HTTP.
type Answerer interface {
	Ask(ctx context.Context, question string) core.Result
	AskWithThreshold(ctx context.Context, question string, threshold float64) core.Result
	Rank(ctx context.Context, question string, threshold float64) (core.Corpus, []search.Scored, error)
	Corpus() core.Corpus
	Threshold() float64
}

// Answer statuses reported by /ask.
const (
	StatusAnswer   = "answer"
	StatusNoAnswer = "no_answer"
)

// QuestionRequest is the body of /ask and /rank.
type QuestionRequest struct {
	Question  string   `json:"question"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// AskResponse is the data of a successful /ask.
type AskResponse struct {
	Status  string `json:"status"`
	Answer  string `json:"answer"`
	Indices []int  `json:"indices,omitempty"`
}

// RankedPassage is one row of /rank.
type RankedPassage struct {
	Index       int     `json:"index"`
	Text        string  `json:"text"`
	Similarity  float64 `json:"similarity"`
	Boosted     float64 `json:"boosted"`
	KeywordHits int     `json:"keyword_hits"`
	Score       float64 `json:"score"`
}

// RankResponse is the data of a successful /rank.
type RankResponse struct {
	Threshold float64         `json:"threshold"`
	Passages  []RankedPassage `json:"passages"`
}

// Handler serves the question endpoints.
type Handler struct {
	answerer        Answerer
	fallbackMessage string
	logger          *slog.Logger
}

// NewHandler creates a Handler. fallbackMessage is returned as the answer when
// nothing in the knowledge base matches.
func NewHandler(answerer Answerer, fallbackMessage string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		answerer:        answerer,
		fallbackMessage: fallbackMessage,
		logger:          logger,
	}
}

// Health reports liveness and the number of loaded passages.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	Success(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"passages": h.answerer.Corpus().Len(),
	})
}

// Ask answers a question.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	var result core.Result
	if req.Threshold != nil {
		result = h.answerer.AskWithThreshold(r.Context(), req.Question, *req.Threshold)
	} else {
		result = h.answerer.Ask(r.Context(), req.Question)
	}

	switch res := result.(type) {
	case core.Answer:
		Success(w, http.StatusOK, AskResponse{Status: StatusAnswer, Answer: res.Text, Indices: res.Indices})
	case core.NoAnswer:
		Success(w, http.StatusOK, AskResponse{Status: StatusNoAnswer, Answer: h.fallbackMessage})
	case core.Failure:
		h.fail(w, r, res.Err)
	default:
		h.fail(w, r, errors.New("unexpected result"))
	}
}

// Rank returns the full score table for a question.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	threshold := h.answerer.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	corpus, scores, err := h.answerer.Rank(r.Context(), req.Question, threshold)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	passages := make([]RankedPassage, len(scores))
	for i, s := range scores {
		passages[i] = RankedPassage{
			Index:       s.Index,
			Text:        corpus.Passage(s.Index).Text,
			Similarity:  s.Similarity,
			Boosted:     s.Boosted,
			KeywordHits: s.KeywordHits,
			Score:       s.Score,
		}
	}
	Success(w, http.StatusOK, RankResponse{Threshold: threshold, Passages: passages})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (QuestionRequest, bool) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return req, false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Question) == "" {
		Error(w, http.StatusBadRequest, "question is required")
		return req, false
	}
	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		Error(w, http.StatusBadRequest, "threshold must be within [0, 1]")
		return req, false
	}
	return req, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)
	h.logger.Error("request failed", "request_id", GetRequestID(r.Context()), "status", status, "err", err)
	Error(w, status, err.Error())
}

// StatusForError maps engine errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrEmbeddingModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
