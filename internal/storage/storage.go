// Package storage keeps a history of finished PMML exports.
// It uses BoltDB as the underlying storage engine: every export record is
// stored under a "model_timestamp_id" key for efficient time-range queries,
// and an id index resolves single records.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	exportsBucket = "exports"    // Bucket name for storing export records
	idsBucket     = "export_ids" // Bucket name for the id -> key index

	dbFile = "pmml-exports.db"

	// unnamedModel keys records of exports without a model name.
	unnamedModel = "unnamed"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("export not found")

// ExportRecord is one finished export.
type ExportRecord struct {
	ID         string    `json:"id"`
	ModelName  string    `json:"model_name"`
	Kind       string    `json:"kind"`
	Version    string    `json:"pmml_version"`
	CreatedAt  time.Time `json:"created_at"`
	Advisories []string  `json:"advisories,omitempty"`
	Published  bool      `json:"published"`
	Document   []byte    `json:"document"`
}

// Store provides persistent storage for export records using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates necessary buckets.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(exportsBucket)); err != nil {
			return fmt.Errorf("create exports bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(idsBucket)); err != nil {
			return fmt.Errorf("create ids bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// StoreExport stores an export record and returns its id. A record without
// an id gets a new UUID; a zero CreatedAt is set to the current time.
func (s *Store) StoreExport(rec ExportRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		ids := tx.Bucket([]byte(idsBucket))
		if ids.Get([]byte(rec.ID)) != nil {
			return fmt.Errorf("export %s already exists", rec.ID)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal export: %w", err)
		}

		key := recordKey(rec.ModelName, rec.CreatedAt, rec.ID)
		if err := tx.Bucket([]byte(exportsBucket)).Put(key, data); err != nil {
			return err
		}
		return ids.Put([]byte(rec.ID), key)
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// GetExport retrieves the record with the given id.
func (s *Store) GetExport(id string) (ExportRecord, error) {
	var rec ExportRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(idsBucket)).Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		data := tx.Bucket([]byte(exportsBucket)).Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("unmarshal export: %w", err)
		}
		return nil
	})

	return rec, err
}

// ListExports retrieves the records of one model created within a time
// range, ordered by creation time. The range is inclusive of both ends.
// Only records whose model name equals modelName exactly are returned.
func (s *Store) ListExports(modelName string, start, end time.Time) ([]ExportRecord, error) {
	var records []ExportRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(exportsBucket)).Cursor()

		prefix := []byte(keyPrefix(modelName))
		startKey := recordKey(modelName, start, "")
		endKey := append(recordKey(modelName, end, ""), 0xff)

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				continue
			}

			var rec ExportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			// "iris_10_..." shares the "iris_" prefix and sorts inside its range.
			if rec.ModelName != modelName {
				continue
			}
			records = append(records, rec)
		}

		return nil
	})

	return records, err
}

func keyPrefix(modelName string) string {
	if modelName == "" {
		modelName = unnamedModel
	}
	return modelName + "_"
}

// recordKey zero-pads the timestamp so keys of one model sort by time.
func recordKey(modelName string, ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%019d_%s", keyPrefix(modelName), ts.UnixNano(), id))
}
