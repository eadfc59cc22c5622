// SPDX-License-Identifier: MPL-2.0

package installid

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// FileName is the name of the GUID file inside the installation directory.
const FileName = "installation.guid"

var (
	// ErrZeroProgramID is returned when the derived program ID is zero, which is reserved.
	ErrZeroProgramID = errors.New("program id is zero")
	// ErrInvalidGUID is returned when the GUID file's first line is not a UUID.
	ErrInvalidGUID = errors.New("invalid installation guid")
)

type (
	// Store reads and lazily creates the installation GUID file. Successful
	// results are memoized; a Store is safe for concurrent use.
	Store struct {
		path   string
		hash   func([]byte) uint64
		logger *slog.Logger

		mu         sync.Mutex
		guid       uuid.UUID
		haveGUID   bool
		programIDs map[string]uint32
	}

	// Option configures a Store.
	Option func(*Store)
)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store for the GUID file in dir.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		path:       filepath.Join(dir, FileName),
		hash:       xxhash.Sum64,
		logger:     slog.Default(),
		programIDs: make(map[string]uint32),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the GUID file path.
func (s *Store) Path() string {
	return s.path
}

// GUID returns the installation GUID from the first line of the file,
// creating the directory and a random GUID when the file is missing.
func (s *Store) GUID() (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guidLocked()
}

func (s *Store) guidLocked() (uuid.UUID, error) {
	if s.haveGUID {
		return s.guid, nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		id, err := s.create()
		if err != nil {
			return uuid.Nil, err
		}
		s.guid, s.haveGUID = id, true
		return id, nil
	case err != nil:
		return uuid.Nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	first, _, _ := strings.Cut(string(data), "\n")
	id, err := uuid.Parse(strings.TrimSpace(first))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w in %s: %w", ErrInvalidGUID, s.path, err)
	}

	s.guid, s.haveGUID = id, true
	return id, nil
}

func (s *Store) create() (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate installation guid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return uuid.Nil, fmt.Errorf("create installation directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(id.String()+"\n"), 0o644); err != nil {
		return uuid.Nil, fmt.Errorf("write %s: %w", s.path, err)
	}

	s.logger.Debug("created installation guid", "path", s.path, "guid", id)
	return id, nil
}

// ProgramID returns the program identifier for baseDir: the folded hash of
// the GUID XOR the folded hash of baseDir. A zero result is ErrZeroProgramID.
func (s *Store) ProgramID(baseDir string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.programIDs[baseDir]; ok {
		return id, nil
	}

	guid, err := s.guidLocked()
	if err != nil {
		return 0, err
	}

	id, err := deriveProgramID(s.hash, guid, baseDir)
	if err != nil {
		return 0, err
	}

	s.programIDs[baseDir] = id
	return id, nil
}

// deriveProgramID XORs the 32-bit folds of hash(guid) and hash(baseDir).
func deriveProgramID(hash func([]byte) uint64, guid uuid.UUID, baseDir string) (uint32, error) {
	id := fold(hash(guid[:])) ^ fold(hash([]byte(baseDir)))
	if id == 0 {
		return 0, ErrZeroProgramID
	}
	return id, nil
}

// BaseDir returns the directory containing the running executable.
func BaseDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func fold(h uint64) uint32 {
	return uint32(h) ^ uint32(h>>32)
}
