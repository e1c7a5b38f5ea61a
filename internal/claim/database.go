package claim

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const auditBucketName = "decisions"

// ErrAuditDisabled is returned when reading from a disabled audit log
var ErrAuditDisabled = errors.New("audit log is disabled")

// AuditLog defines the interface for the decision audit trail
type AuditLog interface {
	// Append stores a record
	Append(record *AuditRecord) error

	// Get retrieves a record by ID
	Get(id string) (*AuditRecord, error)

	// List returns up to limit records, newest first
	List(limit int) ([]*AuditRecord, error)

	// Close closes the underlying storage
	Close() error
}

// BoltDB implements the AuditLog interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(auditBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Append saves an audit record to the database
func (b *BoltDB) Append(record *AuditRecord) error {
	if record.ID == "" {
		return fmt.Errorf("audit record ID is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(auditBucketName))
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling audit record: %w", err)
		}
		return bucket.Put([]byte(record.ID), data)
	})
}

// Get retrieves an audit record by ID
func (b *BoltDB) Get(id string) (*AuditRecord, error) {
	var record *AuditRecord
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(auditBucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("audit record not found: %s", id)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns up to limit audit records, newest first.
// Keys sort in creation order, so the cursor walks backwards from the end.
func (b *BoltDB) List(limit int) ([]*AuditRecord, error) {
	records := make([]*AuditRecord, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(auditBucketName)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var record AuditRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling audit record: %w", err)
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// NopAuditLog discards every record
type NopAuditLog struct{}

func (NopAuditLog) Append(*AuditRecord) error { return nil }

func (NopAuditLog) Get(string) (*AuditRecord, error) { return nil, ErrAuditDisabled }

func (NopAuditLog) List(int) ([]*AuditRecord, error) { return nil, ErrAuditDisabled }

func (NopAuditLog) Close() error { return nil }
