package model

import (
	"time"

	"github.com/go-lloyd/lloyd/internal/selector"
	"github.com/google/uuid"
)

// Run is the persisted record of one completed model-selection pipeline.
func NewRun(input string, bestK int, results []selector.Result, createdAt time.Time) Run {
	return Run{
		ID:        uuid.New(),
		Input:     input,
		BestK:     bestK,
		Results:   results,
		CreatedAt: createdAt,
	}
}

type Run struct {
	ID        uuid.UUID         `json:"id"`
	Input     string            `json:"input"`
	BestK     int               `json:"bestK"`
	Results   []selector.Result `json:"results"`
	CreatedAt time.Time         `json:"createdAt"`
}
