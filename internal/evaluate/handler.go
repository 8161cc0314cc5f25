// Package evaluate exposes single-shot clustering over HTTP: posted
// points are partitioned at one or more candidate cluster counts.
package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/httputil"
	"github.com/go-lloyd/lloyd/internal/logging"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	Data []struct {
		ID     uint64    `json:"id"`
		Vector []float64 `json:"vector"`
	} `json:"data"`
	Ks    []int    `json:"ks"`
	Seeds []uint64 `json:"seeds"`
}

type clusterResponse struct {
	Centroid []float64       `json:"centroid"`
	Points   []dataset.Point `json:"points"`
}

type evaluation struct {
	K        int               `json:"k"`
	Clusters []clusterResponse `json:"clusters"`
	Steps    int               `json:"steps"`
	Score    *float64          `json:"score,omitempty"`
}

type response struct {
	Results []evaluation `json:"results"`
}

func NewHandler(cfg *Config, engine *cluster.Engine) (http.Handler, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine instance is not created")
	}
	return &handler{cfg: cfg, engine: engine}, nil
}

type handler struct {
	cfg    *Config
	engine *cluster.Engine
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
	if len(req.Ks) == 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "at least one candidate k is required"}`)
		return
	}
	if len(req.Ks) > h.cfg.MaxCandidates {
		httputil.RespBadRequest(ctx, w, `{"error": "too many candidates, max allowed is %d"}`, h.cfg.MaxCandidates)
		return
	}
	if len(req.Seeds) > 0 && len(req.Ks) > 1 {
		httputil.RespBadRequest(ctx, w, `{"error": "explicit seeds are only valid for a single candidate k"}`)
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

	results := make([]evaluation, len(req.Ks))
	errGrp, grpCtx := errgroup.WithContext(ctx)
	for i, k := range req.Ks {
		i, k := i, k
		errGrp.Go(func() error {
			part, err := h.engine.Evaluate(grpCtx, set, k, req.Seeds, false)
			if err != nil {
				return fmt.Errorf("evaluate k=%d: %w", k, err)
			}

			eval := evaluation{K: k, Steps: part.Steps, Clusters: make([]clusterResponse, 0, part.Len())}
			for _, c := range part.Clusters {
				eval.Clusters = append(eval.Clusters, clusterResponse{
					Centroid: c.Centroid,
					Points:   c.Points,
				})
			}
			if score, err := cluster.DannIndex(part); err == nil {
				eval.Score = &score
			}
			results[i] = eval
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		switch {
		case errors.Is(err, cluster.ErrInvalidSeed), errors.Is(err, cluster.ErrInsufficientPoints):
			httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		default:
			httputil.RespInternalError(ctx, w, `{"error": "evaluate processing error, %v"}`, err)
		}
		return
	}

	sort.Slice(results, func(i, j int) bool { return results[i].K < results[j].K })

	bytes, err := json.Marshal(response{Results: results})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}
