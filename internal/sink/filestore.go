package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jfmyers9/albumlog/internal/album"
	"github.com/rs/zerolog"
)

// FileStore writes the tables as JSON-lines files in a directory.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// OpenFileStore prepares dir for writing, creating it if needed.
func OpenFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, album.SinkUnavailable("create "+dir, err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("sink", "jsonl").Str("dir", dir).Logger(),
	}, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// WriteCurrent replaces current_album.json.
func (s *FileStore) WriteCurrent(ctx context.Context, current album.CurrentNormalized) error {
	tmp, err := s.stage(CurrentFile, func(w io.Writer) error { return encodeCurrent(w, current) })
	if err != nil {
		return err
	}
	return s.commit(tmp, CurrentFile)
}

// WriteHistory replaces albums.json.
func (s *FileStore) WriteHistory(ctx context.Context, rows []album.HistoryRow) error {
	tmp, err := s.stage(HistoryFile, func(w io.Writer) error { return encodeHistory(w, rows) })
	if err != nil {
		return err
	}
	if err := s.commit(tmp, HistoryFile); err != nil {
		return err
	}
	s.logger.Debug().Int("rows", len(rows)).Msg("wrote history")
	return nil
}

// ReplaceAll stages both files before renaming either, so a failed encode
// or a full disk leaves the previous files untouched.
func (s *FileStore) ReplaceAll(ctx context.Context, current album.CurrentNormalized, rows []album.HistoryRow) error {
	curTmp, err := s.stage(CurrentFile, func(w io.Writer) error { return encodeCurrent(w, current) })
	if err != nil {
		return err
	}
	histTmp, err := s.stage(HistoryFile, func(w io.Writer) error { return encodeHistory(w, rows) })
	if err != nil {
		_ = os.Remove(curTmp)
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(curTmp)
		_ = os.Remove(histTmp)
		return album.SinkUnavailable("replace", err)
	}

	if err := s.commit(curTmp, CurrentFile); err != nil {
		_ = os.Remove(histTmp)
		return err
	}
	if err := s.commit(histTmp, HistoryFile); err != nil {
		return &album.Error{Kind: album.KindPartialLoad, Op: HistoryFile + " not replaced", Err: err}
	}

	s.logger.Debug().Int("rows", len(rows)).Msg("replaced tables")
	return nil
}

// ReadAll reads both files back.
func (s *FileStore) ReadAll(ctx context.Context) (album.CurrentNormalized, []album.HistoryRow, error) {
	cf, err := os.Open(filepath.Join(s.dir, CurrentFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return album.CurrentNormalized{}, nil, ErrNoData
		}
		return album.CurrentNormalized{}, nil, album.SinkUnavailable("open "+CurrentFile, err)
	}
	defer cf.Close()

	current, err := decodeCurrent(cf)
	if err != nil {
		return album.CurrentNormalized{}, nil, err
	}

	hf, err := os.Open(filepath.Join(s.dir, HistoryFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return album.CurrentNormalized{}, nil, ErrNoData
		}
		return album.CurrentNormalized{}, nil, album.SinkUnavailable("open "+HistoryFile, err)
	}
	defer hf.Close()

	rows, err := decodeHistory(hf)
	if err != nil {
		return album.CurrentNormalized{}, nil, err
	}

	return current, rows, nil
}

// Close releases nothing; files are closed as soon as they are written.
func (s *FileStore) Close() error {
	return nil
}

// stage writes a document to a temp file in the target directory and
// returns its path.
func (s *FileStore) stage(name string, write func(w io.Writer) error) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", album.SinkUnavailable("create temp for "+name, err)
	}
	tmpPath := f.Name()

	fail := func(op string, err error) (string, error) {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", album.SinkUnavailable(op+" "+name, err)
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fail("encode", err)
	}
	if err := bw.Flush(); err != nil {
		return fail("write", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", album.SinkUnavailable("close "+name, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return "", album.SinkUnavailable("chmod "+name, err)
	}

	return tmpPath, nil
}

// commit atomically moves a staged file into place.
func (s *FileStore) commit(tmpPath, name string) error {
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return album.SinkUnavailable(fmt.Sprintf("rename %s", name), err)
	}
	return nil
}
