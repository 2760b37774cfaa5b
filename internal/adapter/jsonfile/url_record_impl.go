package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
)

// URLRecordRepo provides a concrete implementation for the URLRecordRepository interface using a JSON file.
type URLRecordRepo struct {
	path string
}

// NewURLRecordRepo creates a new instance of URLRecordRepo.
func NewURLRecordRepo(path string) *URLRecordRepo {
	return &URLRecordRepo{path: path}
}

// Path returns the backing file.
func (r *URLRecordRepo) Path() string {
	return r.path
}

// Load reads and decodes the store document. Records are decoded one by one:
// a record with wrongly typed fields is coerced, and a record that is not an
// object at all is reported in URLStore.Skipped. Only a document that is not
// valid JSON, or has no "urls" object, is ErrStoreCorrupt.
func (r *URLRecordRepo) Load() (*entity.URLStore, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repository.ErrStoreNotFound, r.path)
		}
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrStoreCorrupt, r.path, err)
	}
	var rawURLs map[string]json.RawMessage
	if err := json.Unmarshal(doc["urls"], &rawURLs); err != nil || rawURLs == nil {
		return nil, fmt.Errorf("%w: %s: missing \"urls\" object", repository.ErrStoreCorrupt, r.path)
	}

	store := &entity.URLStore{
		LastUpdated: lenientString(doc["last_updated"]),
		URLCount:    lenientInt(doc["url_count"]),
		URLs:        make(map[string]*entity.URLRecord, len(rawURLs)),
	}
	for url, raw := range rawURLs {
		rec, ok := decodeRecord(raw)
		if !ok {
			store.Skipped = append(store.Skipped, url)
			continue
		}
		store.URLs[url] = rec
	}
	sort.Strings(store.Skipped)
	return store, nil
}

// Save encodes the store and atomically replaces the file.
func (r *URLRecordRepo) Save(store *entity.URLStore) error {
	data, err := encode(store)
	if err != nil {
		return err
	}
	return writeAtomic(r.path, data)
}

func decodeRecord(raw json.RawMessage) (*entity.URLRecord, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	var rec entity.URLRecord
	if err := json.Unmarshal(raw, &rec); err == nil {
		return &rec, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	rec = entity.URLRecord{
		FailedAttempts: lenientInt(fields["failed_attempts"]),
		FirstSeen:      lenientString(fields["first_seen"]),
		LastSeen:       lenientString(fields["last_seen"]),
	}
	var crawled string
	if err := json.Unmarshal(fields["last_crawled"], &crawled); err == nil {
		rec.LastCrawled = &crawled
	}
	var metadata entity.Metadata
	if err := json.Unmarshal(fields["metadata"], &metadata); err == nil {
		rec.Metadata = metadata
	}
	return &rec, true
}

// lenientString returns raw as a string, or "" when it holds anything else.
func lenientString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// lenientInt accepts integers written as floats or strings; anything else is 0.
func lenientInt(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}
