// Package database stores completed run records in the bolt database.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-lloyd/lloyd/internal/database"
	"github.com/go-lloyd/lloyd/internal/run/model"
	bolt "go.etcd.io/bbolt"
)

const bucket = "run:history"

type FilterFn func(run model.Run) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) Store(_ context.Context, run model.Run) error {
	bytes, err := json.Marshal(run)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(run.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Run, error) {
	var runs []model.Run
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var run model.Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("unable to unmarshal run: %w", err)
			}
			if filter == nil || filter(run) {
				runs = append(runs, run)
			}
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %v", err)
	}

	return runs, nil
}

func (db *DB) DeleteMany(_ context.Context, runs []model.Run) error {
	if err := db.sDB.DB.Batch(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		for _, run := range runs {
			if err := b.Delete([]byte(run.ID.String())); err != nil {
				return fmt.Errorf("unable delete: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}

func (db *DB) Count(_ context.Context) (int, error) {
	var n int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %v", err)
	}
	return n, nil
}

// PruneOldest keeps at most maxStored records, deleting the oldest ones
// first.
func (db *DB) PruneOldest(ctx context.Context, maxStored int) error {
	if maxStored <= 0 {
		return nil
	}

	runs, err := db.FindAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to fetch runs: %v", err)
	}
	if len(runs) <= maxStored {
		return nil
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.UnixNano() < runs[j].CreatedAt.UnixNano()
	})

	if err := db.DeleteMany(ctx, runs[:len(runs)-maxStored]); err != nil {
		return fmt.Errorf("unable delete oldest runs: %v", err)
	}
	return nil
}
