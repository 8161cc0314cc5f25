// Package sweep exposes model selection over HTTP: posted points are
// swept across the configured candidate range and the best cluster count
// is returned with its scores.
package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/httputil"
	"github.com/go-lloyd/lloyd/internal/logging"
	"github.com/go-lloyd/lloyd/internal/selector"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	Data []struct {
		ID     uint64    `json:"id"`
		Vector []float64 `json:"vector"`
	} `json:"data"`
}

type response struct {
	BestK   int               `json:"bestK"`
	Results []selector.Result `json:"results"`
}

func NewHandler(cfg *Config, selection *selector.Manager) (http.Handler, error) {
	if selection == nil {
		return nil, fmt.Errorf("selector instance is not created")
	}
	return &handler{cfg: cfg, selection: selection}, nil
}

type handler struct {
	cfg       *Config
	selection *selector.Manager
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		logger.Debug(fmt.Sprintf(`{"error": "%v"}`, "content-type is not application/json"))
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Data) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	points := make([]dataset.Point, 0, len(req.Data))
	for _, dat := range req.Data {
		points = append(points, dataset.Point{ID: dat.ID, Vec: dat.Vector})
	}
	set, err := dataset.New(points, nil)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		return
	}

	bestK, results, err := h.selection.SelectBestK(ctx, set)
	if err != nil {
		if errors.Is(err, selector.ErrNoValidCandidate) {
			httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
			return
		}
		httputil.RespInternalError(ctx, w, `{"error": "sweep processing error, %v"}`, err)
		return
	}

	bytes, err := json.Marshal(response{BestK: bestK, Results: results})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}
