// Package bolt is a storage.Storage backed by a bbolt file with one
// bucket per program.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Comcast/koala/storage"
	"github.com/Comcast/koala/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

type Storage struct {
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return errors.Wrapf(err, "opening %s", s.filename)
	}
	s.db = db
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) log(op, pid string) *logrus.Entry {
	return util.Logger().WithFields(logrus.Fields{
		"storage": s.filename,
		"op":      op,
		"program": pid,
	})
}

func (s *Storage) MakeProgram(ctx context.Context, pid string) error {
	s.log("MakeProgram", pid).Debug("bolt")
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucket([]byte(pid))
		return err
	})
}

func (s *Storage) RemProgram(ctx context.Context, pid string) error {
	s.log("RemProgram", pid).Debug("bolt")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(pid))
	})
}

// GetTraces returns the program's traces in the order they were
// written.
func (s *Storage) GetTraces(ctx context.Context, pid string) ([]*storage.Trace, error) {
	ts := make([]*storage.Trace, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(pid))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for id, bs := c.First(); id != nil; id, bs = c.Next() {
			var t storage.Trace
			if err := json.Unmarshal(bs, &t); err != nil {
				return errors.Wrapf(err, "trace %s", id)
			}
			t.Id = string(id)
			ts = append(ts, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log("GetTraces", pid).WithField("found", len(ts)).Debug("bolt")

	if len(ts) == 0 {
		return nil, nil
	}

	return ts, nil
}

// WriteTraces stores the given traces.  A trace without an Id gets
// the next one in sequence, which is written back into the Trace.
func (s *Storage) WriteTraces(ctx context.Context, pid string, ts []*storage.Trace) error {
	s.log("WriteTraces", pid).WithField("traces", len(ts)).Debug("bolt")

	if 0 == len(ts) {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(pid))
		if err != nil {
			return err
		}
		for _, t := range ts {
			if t.Id == "" {
				n, err := b.NextSequence()
				if err != nil {
					return err
				}
				t.Id = fmt.Sprintf("%010d", n)
			}
			key := []byte(t.Id)
			if t.Deleted {
				if err := b.Delete(key); err != nil {
					return err
				}
				continue
			}

			// To save some space, remove id.
			saved := *t
			saved.Id = ""
			js, err := json.Marshal(&saved)
			if err != nil {
				return err
			}
			if err := b.Put(key, js); err != nil {
				return err
			}
		}
		return nil
	})
}

// Programs lists the ids of programs with traces.
func (s *Storage) Programs(ctx context.Context) ([]string, error) {
	var acc []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	return acc, err
}
