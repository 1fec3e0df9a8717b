// Package cache persists one listing record per identifier as a
// human-readable JSON file, next to the listing photo.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"condo-extractor/internal/models"
)

// ErrCorrupt reports a cache entry that exists but does not hold a valid record.
var ErrCorrupt = errors.New("corrupt cache entry")

const (
	recordExt = ".json"
	photoExt  = ".jpeg"
)

// Store is a directory of {identifier}.json records and {identifier}.jpeg photos.
type Store struct {
	dir string
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log}
}

func (s *Store) Dir() string { return s.dir }

// RecordFile is the file name of the record for id.
func RecordFile(id string) string { return id + recordExt }

// PhotoFile is the file name of the photo for id.
func PhotoFile(id string) string { return id + photoExt }

// Lookup returns the committed record for id, or nil when there is none.
func (s *Store) Lookup(id string) (*models.ListingRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, RecordFile(id)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry %s: %w", id, err)
	}
	rec, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("cache entry %s: %w", id, err)
	}
	return rec, nil
}

// Commit writes rec as the record for id, replacing any previous one.
// Readers see either the old file or the new one, never a partial write.
func (s *Store) Commit(id string, rec models.ListingRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}
	if err := WriteAtomic(s.dir, RecordFile(id), &buf); err != nil {
		return fmt.Errorf("commit record %s: %w", id, err)
	}
	s.log.Debug("cache entry committed", zap.String("identifier", id))
	return nil
}

// HasPhoto reports whether a photo file exists for id.
func (s *Store) HasPhoto(id string) bool {
	info, err := os.Stat(filepath.Join(s.dir, PhotoFile(id)))
	return err == nil && info.Mode().IsRegular()
}

// Entry is one record found while scanning the store.
type Entry struct {
	File   string
	Record *models.ListingRecord
	Err    error
}

// Scan reads every record file in the directory, in directory order.
// Entries that cannot be read carry Err instead of Record. A missing
// directory yields no entries.
func (s *Store) Scan() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan cache dir: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, recordExt) || strings.HasPrefix(name, ".") {
			continue
		}
		e := Entry{File: name}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			e.Err = err
		} else {
			e.Record, e.Err = decode(data)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decode(data []byte) (*models.ListingRecord, error) {
	var rec models.ListingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if rec.Identifier == "" {
		return nil, fmt.Errorf("%w: missing identifier", ErrCorrupt)
	}
	return &rec, nil
}

// WriteAtomic copies r into dir/name through a temporary file that is
// renamed into place once fully written.
func WriteAtomic(dir, name string, r io.Reader) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		cleanup()
		return err
	}
	return nil
}
