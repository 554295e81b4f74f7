package persist

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"

	"github.com/ContinuumIO/blz/pkg/blzerr"
)

var attrsBucket = []byte("attrs")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Attrs is the `__attrs__` sidecar: spec.md §6 calls it a "free-form
// JSON-ish key/value store," which a single-file embedded key/value
// store (bbolt) realizes literally rather than figuratively. Values are
// JSON-encoded (json-iterator/go) so a caller can stash arbitrary
// structured data (BTable's column order, user-defined tags, ...) under a
// string key.
type Attrs struct {
	db *bolt.DB
}

// OpenAttrs opens (creating if absent) the bbolt-backed attrs file at path.
func OpenAttrs(path string) (*Attrs, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, blzerr.WrapIO(err, "opening attrs file %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(attrsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, blzerr.WrapIO(err, "initializing attrs bucket")
	}
	return &Attrs{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (a *Attrs) Close() error {
	if err := a.db.Close(); err != nil {
		return blzerr.WrapIO(err, "closing attrs file")
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func (a *Attrs) SetJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return blzerr.WrapIO(err, "marshaling attrs key %q", key)
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(attrsBucket).Put([]byte(key), b)
	})
}

// GetRawMap fetches key and unmarshals it into a generic
// map[string]interface{}, the first stage of the jsoniter -> generic map ->
// mapstructure typed-decode pipeline SPEC_FULL.md §4.5 describes; callers
// that want a concrete struct run mapstructure.Decode over the result.
func (a *Attrs) GetRawMap(key string) (map[string]interface{}, bool, error) {
	var raw []byte
	if err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(attrsBucket).Get([]byte(key))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, false, blzerr.WrapIO(err, "reading attrs key %q", key)
	}
	if raw == nil {
		return nil, false, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false, blzerr.WrapCorrupted(err, "decoding attrs key %q", key)
	}
	return m, true, nil
}

// SetString stores a plain string value under key (used for small scalar
// attrs that don't warrant a JSON object).
func (a *Attrs) SetString(key, value string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(attrsBucket).Put([]byte(key), []byte(value))
	})
}

// GetString fetches a plain string value.
func (a *Attrs) GetString(key string) (string, bool, error) {
	var val string
	found := false
	if err := a.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(attrsBucket).Get([]byte(key))
		if v != nil {
			val = string(v)
			found = true
		}
		return nil
	}); err != nil {
		return "", false, blzerr.WrapIO(err, "reading attrs key %q", key)
	}
	return val, found, nil
}

// Delete removes key, a no-op if absent.
func (a *Attrs) Delete(key string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(attrsBucket).Delete([]byte(key))
	})
}
