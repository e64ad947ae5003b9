package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/crypto"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/metrics"
)

// File layout inside the store directory:
//   session.json — structured session record (sealed when encryption is on)
//   token        — bare legacy token, written as a deprecated mirror on every save
//   tenant       — selected merchant/tenant id
//   user.json    — cached user blob for offline display
const (
	sessionFile = "session.json"
	legacyFile  = "token"
	tenantFile  = "tenant"
	userFile    = "user.json"
)

// FileStore persists the session as files in a directory. Writes are atomic
// (temp file + rename) so a crash mid-save never leaves a truncated record.
type FileStore struct {
	dir   string
	crypt crypto.Service
}

// NewFileStore creates a FileStore rooted at dir. Pass crypto.NoopService{}
// to store the session in plaintext.
func NewFileStore(dir string, crypt crypto.Service) *FileStore {
	return &FileStore{dir: dir, crypt: crypt}
}

func (s *FileStore) Save(_ context.Context, sess Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("save").Inc()
		return err
	}

	data, err := encodeRecord(sess)
	if err != nil {
		return err
	}
	sealed, err := s.crypt.Seal(data)
	if err != nil {
		return err
	}

	if err := s.writeAtomic(sessionFile, sealed); err != nil {
		metrics.SessionStoreErrorsTotal.WithLabelValues("save").Inc()
		return err
	}

	// Deprecated legacy mirror. Written for older tooling, never consulted
	// while the structured record exists.
	if err := s.writeAtomic(legacyFile, []byte(sess.Token)); err != nil {
		slog.Warn("Failed to write legacy token mirror", "error", err)
	}

	if sess.User != nil {
		blob, err := json.Marshal(sess.User)
		if err == nil {
			if err := s.writeAtomic(userFile, blob); err != nil {
				slog.Warn("Failed to write cached user blob", "error", err)
			}
		}
	}

	return nil
}

func (s *FileStore) Load(_ context.Context) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if errors.Is(err, fs.ErrNotExist) {
		return s.loadLegacy()
	}
	if err != nil {
		slog.Warn("Session file unreadable, treating as logged out", "error", err)
		metrics.SessionStoreErrorsTotal.WithLabelValues("load").Inc()
		return nil, nil
	}

	plain, err := s.crypt.Open(data)
	if err != nil {
		slog.Warn("Session file undecryptable, treating as logged out", "error", err)
		return nil, nil
	}

	sess, err := decodeRecord(plain)
	if err != nil {
		slog.Warn("Session file corrupted, treating as logged out", "error", err)
		return nil, nil
	}
	return sess, nil
}

// loadLegacy returns a session upgraded from the bare-token format, or nil
// if no legacy token exists either.
func (s *FileStore) loadLegacy() (*Session, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, legacyFile))
	if err != nil {
		return nil, nil
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, nil
	}
	return upgradeLegacyToken(token), nil
}

func (s *FileStore) Clear(_ context.Context) error {
	var firstErr error
	for _, name := range []string{sessionFile, legacyFile, tenantFile, userFile} {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
			metrics.SessionStoreErrorsTotal.WithLabelValues("clear").Inc()
		}
	}
	return firstErr
}

func (s *FileStore) SaveTenant(_ context.Context, tenantID string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return s.writeAtomic(tenantFile, []byte(tenantID))
}

func (s *FileStore) LoadTenant(_ context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, tenantFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
