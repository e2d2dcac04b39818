package bankledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	backupSuffix     = ".bak"
	stagingSuffix    = ".tmp"
	quarantineSuffix = ".corrupt"
)

// RecordStore keeps the whole Document in one JSON file. Every read and
// write goes through a single weighted semaphore, so an Update is atomic with
// respect to other callers in the same process. Access from several
// processes is not coordinated.
type RecordStore struct {
	path string
	log  *zerolog.Logger
	sem  *semaphore.Weighted
}

// NewRecordStore opens the store at path, creating the directory and an
// empty document when needed.
func NewRecordStore(path string, log *zerolog.Logger) (*RecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ErrPersistence{Op: "mkdir", Path: path, Err: err}
	}
	s := &RecordStore{
		path: path,
		log:  log,
		sem:  semaphore.NewWeighted(1),
	}
	if _, err := s.Load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RecordStore) Path() string {
	return s.path
}

func (s *RecordStore) Load(ctx context.Context) (*Document, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.load()
}

func (s *RecordStore) Save(ctx context.Context, doc *Document) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return s.save(doc)
}

// View loads the document under the store lock and hands it to fn. Changes
// made by fn are discarded.
func (s *RecordStore) View(ctx context.Context, fn func(*Document) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update runs a load, fn, save cycle while holding the store lock. Nothing
// is written when fn returns an error.
func (s *RecordStore) Update(ctx context.Context, fn func(*Document) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	doc, err := s.load()
	if err != nil {
		return err
	}
	if err = fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *RecordStore) load() (*Document, error) {
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s.reset()
	case err != nil:
		s.log.Warn().Err(err).Str("path", s.path).Msg("store unreadable, starting empty")
		return s.reset()
	case len(bytes.TrimSpace(raw)) == 0:
		return s.reset()
	}

	doc, err := ParseDocument(raw, s.log)
	if errors.Is(err, ErrCorruptDocument) {
		quarantine := s.path + quarantineSuffix
		if rerr := os.Rename(s.path, quarantine); rerr != nil {
			return nil, ErrPersistence{Op: "quarantine", Path: s.path, Err: rerr}
		}
		s.log.Error().
			Str("path", s.path).
			Str("quarantine", quarantine).
			Msg("store corrupt, moved aside and replaced with an empty document")
		return s.reset()
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *RecordStore) reset() (*Document, error) {
	doc := NewDocument()
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *RecordStore) save(doc *Document) error {
	doc.normalize()
	buf, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return ErrPersistence{Op: "encode", Path: s.path, Err: err}
	}

	staging := s.path + stagingSuffix
	if err = writeFile(staging, buf); err != nil {
		os.Remove(staging)
		return ErrPersistence{Op: "stage", Path: staging, Err: err}
	}

	if _, err = os.Stat(s.path); err == nil {
		if err = copyFile(s.path, s.path+backupSuffix); err != nil {
			s.log.Warn().Err(err).Str("path", s.path).Msg("backup failed")
		}
	}

	if err = os.Rename(staging, s.path); err != nil {
		// cross-device: the copy below is not atomic
		s.log.Warn().Err(err).Str("path", s.path).Msg("rename failed, copying instead")
		if err = copyFile(staging, s.path); err != nil {
			return ErrPersistence{Op: "replace", Path: s.path, Err: err}
		}
		os.Remove(staging)
	}
	return nil
}

func writeFile(path string, buf []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	n, err := f.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	buf, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	return writeFile(dst, buf)
}
