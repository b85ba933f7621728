package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	service "github.com/talenti/fitscore/internal/app"
	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/logger"
)

// ScoringHandler handles scoring requests.
type ScoringHandler struct {
	deps         Dependencies
	logger       logger.Logger
	maxBodyBytes int64
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps Dependencies, l logger.Logger, maxBodyBytes int64) *ScoringHandler {
	return &ScoringHandler{deps: deps, logger: l, maxBodyBytes: maxBodyBytes}
}

// HandleAnalyze handles POST /api/v1/scoring/analyze requests.
func (h *ScoringHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.scoring_analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := h.decode(w, r)
	if err != nil {
		h.logger.Warn(r.Context(), "rejected scoring request", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusBadRequest, service.CodeInvalidInput, err)
		return
	}

	resp, err := h.deps.Score(r.Context(), req)
	if err != nil {
		code, msg := service.Describe(err)
		writeError(w, statusFor(code), code, errors.New(msg))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScoringHandler) decode(w http.ResponseWriter, r *http.Request) (*model.ScoringRequest, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req model.ScoringRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		case errors.As(err, &tooLarge):
			return nil, ErrBodySize
		case errors.Is(err, model.ErrSegment):
			return nil, model.ErrSegment
		default:
			return nil, fmt.Errorf("%w: invalid JSON body: %w", ErrBadRequest, err)
		}
	}
	return &req, nil
}
