package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/recommend"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { RecommendDuration.Observe(time.Since(start).Seconds()) }()

	q, err := parseQuery(r)
	if err != nil {
		RecommendRequestsTotal.WithLabelValues(outcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Recommend(r.Context(), q)
	RecommendRequestsTotal.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.Error("recommend failed", zap.String("query", q.Text), zap.Error(err))
		}
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"match":   res.Primary,
		"matches": res.Matches,
		"data":    res.Items,
		"count":   len(res.Items),
	})
}

// parseQuery reads q, bias, top_k and cutoff. Present but invalid values are
// rejected rather than replaced by defaults.
func parseQuery(r *http.Request) (recommend.Query, error) {
	v := r.URL.Query()
	q := recommend.Query{Text: strings.TrimSpace(v.Get("q"))}
	if q.Text == "" {
		return q, errors.New("q is required")
	}

	if raw := v.Get("bias"); raw != "" {
		bias, err := strconv.ParseFloat(raw, 64)
		if err != nil || bias < 0 || bias > 1 {
			return q, errors.New("bias must be a number between 0 and 1")
		}
		q.CheapBias = &bias
	}
	if raw := v.Get("top_k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k <= 0 {
			return q, errors.New("top_k must be a positive integer")
		}
		q.TopK = k
	}
	if raw := v.Get("cutoff"); raw != "" {
		c, err := strconv.Atoi(raw)
		if err != nil || c < 0 || c > 100 {
			return q, errors.New("cutoff must be an integer between 0 and 100")
		}
		q.Cutoff = &c
	}
	return q, nil
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	limit := 0
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	pairs, err := s.engine.Suggest(r.Context(), v.Get("restaurant"), v.Get("food"), limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if pairs == nil {
		pairs = []catalog.Pair{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  pairs,
		"count": len(pairs),
	})
}

type rateRequest struct {
	Restaurant string  `json:"restaurant"`
	Food       string  `json:"food"`
	Rating     float64 `json:"rating"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.service.RateDish(r.Context(), req.Restaurant, req.Food, req.Rating)
	WritesTotal.WithLabelValues(string(catalog.ChangeRating), outcomeOf(err)).Inc()
	if err != nil {
		s.writeWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub catalog.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.service.SubmitEntry(r.Context(), sub)
	WritesTotal.WithLabelValues(string(catalog.ChangeSubmission), outcomeOf(err)).Inc()
	if err != nil {
		s.writeWriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) writeWriteError(w http.ResponseWriter, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": err.Error(),
			"hint":  "submit the dish with POST /api/v1/dishes first",
		})
	default:
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("write failed", zap.Error(err))
		}
		writeError(w, status, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}
