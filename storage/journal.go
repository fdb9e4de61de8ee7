package storage

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"

	"go.etcd.io/bbolt"
)

var (
	controllersBucket = []byte("controllers")
	bindingsBucket    = []byte("bindings")
)

var ErrBindingNotFound = errors.New("binding not found")

type ControllerRecord struct {
	Address string
	Vendor  string
	Device  string
	Driver  string
	Port    string
	IRQ     int
	SeenAt  time.Time
}

type BindingRecord struct {
	ID         string
	Interface  string
	Controller string
	Port       string
	BoundAt    time.Time
	ReleasedAt time.Time
}

func (br *BindingRecord) Live() bool {
	return br.ReleasedAt.IsZero()
}

// Journal keeps a durable trail of discovered controllers and bindings.
type Journal struct {
	db *bbolt.DB
}

func NewJournal(db *bbolt.DB) (*Journal, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(controllersBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bindingsBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

func OpenJournal(dbPath string) (*Journal, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	j, err := NewJournal(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func encode(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, value interface{}) error {
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(value)
}

func (j *Journal) RecordControllers(records []ControllerRecord) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(controllersBucket)
		for i := range records {
			data, err := encode(&records[i])
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(records[i].Address), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (j *Journal) Controllers() ([]ControllerRecord, error) {
	var records []ControllerRecord
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(controllersBucket).ForEach(func(k, v []byte) error {
			var record ControllerRecord
			if err := decode(v, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

func (j *Journal) RecordBinding(record *BindingRecord) error {
	data, err := encode(record)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bindingsBucket).Put([]byte(record.ID), data)
	})
}

func (j *Journal) RecordRelease(id string, at time.Time) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bindingsBucket)
		data := bucket.Get([]byte(id))
		if data == nil {
			return ErrBindingNotFound
		}
		var record BindingRecord
		if err := decode(data, &record); err != nil {
			return err
		}
		record.ReleasedAt = at
		updated, err := encode(&record)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), updated)
	})
}

// Bindings returns every recorded binding ordered by bind time.
func (j *Journal) Bindings() ([]BindingRecord, error) {
	var records []BindingRecord
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bindingsBucket).ForEach(func(k, v []byte) error {
			var record BindingRecord
			if err := decode(v, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(records); i++ {
		for k := i; k > 0 && records[k].BoundAt.Before(records[k-1].BoundAt); k-- {
			records[k], records[k-1] = records[k-1], records[k]
		}
	}
	return records, nil
}
