package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	db "github.com/go-lloyd/lloyd/internal/database"
	"github.com/go-lloyd/lloyd/internal/run/model"
	"github.com/go-lloyd/lloyd/internal/selector"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	sDB, err := db.NewFromEnv(context.Background(), &db.Config{
		FileName: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("unable to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = sDB.Close(context.Background())
	})
	return New(sDB)
}

func testRun(bestK int, createdAt time.Time) model.Run {
	return model.NewRun("kmeans.csv", bestK, []selector.Result{
		{K: 2, Score: 0.4},
		{K: bestK, Score: 0.9},
	}, createdAt)
}

func TestStoreFindAll(t *testing.T) {
	runDB := testDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := runDB.Store(ctx, testRun(3+i, time.Now())); err != nil {
			t.Fatalf("the error should not be returned, got %v", err)
		}
	}

	runs, err := runDB.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("stored runs got: %v, expected: 3", len(runs))
	}

	filtered, err := runDB.FindAll(ctx, func(run model.Run) bool {
		return run.BestK == 4
	})
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("filtered runs got: %v, expected: 1", len(filtered))
	}
	if len(filtered) == 1 && len(filtered[0].Results) != 2 {
		t.Errorf("run results got: %v, expected: 2", len(filtered[0].Results))
	}
}

func TestPruneOldest(t *testing.T) {
	runDB := testDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		if err := runDB.Store(ctx, testRun(2, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("the error should not be returned, got %v", err)
		}
	}

	if err := runDB.PruneOldest(ctx, 2); err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}

	count, err := runDB.Count(ctx)
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	if count != 2 {
		t.Errorf("runs after pruning got: %v, expected: 2", count)
	}

	runs, err := runDB.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	for _, run := range runs {
		if run.CreatedAt.Before(base.Add(3 * time.Minute).Add(-time.Second)) {
			t.Errorf("an old run survived pruning: %v", run.CreatedAt)
		}
	}
}

func TestPruneOldestDisabled(t *testing.T) {
	runDB := testDB(t)
	ctx := context.Background()

	if err := runDB.Store(ctx, testRun(2, time.Now())); err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	if err := runDB.PruneOldest(ctx, 0); err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	count, err := runDB.Count(ctx)
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	if count != 1 {
		t.Errorf("pruning with maxStored=0 must keep everything, got %v", count)
	}
}
