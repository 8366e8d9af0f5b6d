package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// studyTimeFile is the on-disk shape of the study-time scalar. The
// original app briefly stored minutes; TotalMinutes is read once and
// migrated to seconds on the next save.
type studyTimeFile struct {
	TotalSeconds *int64 `json:"total_seconds,omitempty"`
	TotalMinutes *int64 `json:"total_minutes,omitempty"`
}

// FileStudyTimeStore implements StudyTimeStore with a single JSON file,
// guarded by a file lock and written via temp-file rename.
type FileStudyTimeStore struct {
	filePath string
	flk      *flock.Flock
}

// NewFileStudyTimeStore creates a study-time store at filePath. The
// file and its directory appear on first save.
func NewFileStudyTimeStore(filePath string) *FileStudyTimeStore {
	return &FileStudyTimeStore{
		filePath: filePath,
		flk:      flock.New(filePath + ".lock"),
	}
}

// Load returns the cumulative study seconds, 0 when the file does not
// exist yet. Legacy minute values are converted.
func (s *FileStudyTimeStore) Load() (int64, error) {
	if _, err := os.Stat(filepath.Dir(s.filePath)); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err := s.flk.Lock(); err != nil {
		return 0, fmt.Errorf("lock study time file: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read study time file: %w", err)
	}

	var f studyTimeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse study time file: %w", err)
	}

	var secs int64
	switch {
	case f.TotalSeconds != nil:
		secs = *f.TotalSeconds
	case f.TotalMinutes != nil:
		secs = *f.TotalMinutes * 60
	}
	if secs < 0 {
		secs = 0
	}
	return secs, nil
}

// Save persists the cumulative study seconds atomically.
func (s *FileStudyTimeStore) Save(totalSeconds int64) error {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	if dir := filepath.Dir(s.filePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock study time file: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	data, err := json.Marshal(studyTimeFile{TotalSeconds: &totalSeconds})
	if err != nil {
		return fmt.Errorf("marshal study time: %w", err)
	}

	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write temporary study time file: %w", err)
	}
	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace study time file: %w", err)
	}
	return nil
}
