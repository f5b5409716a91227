package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Mirror.Get] together with the stale data when
// an entry is older than the mirror's TTL.
var ErrExpired = errors.New("mirror entry expired")

// Mirror stores downloaded files under dir, one file per URL named by the
// SHA-256 of the URL. Entry age is the file modification time. A TTL of 0
// means entries never expire.
type Mirror struct {
	dir string
	ttl time.Duration
}

// NewMirror creates dir if needed.
func NewMirror(dir string, ttl time.Duration) (*Mirror, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Mirror{dir: dir, ttl: ttl}, nil
}

func (m *Mirror) Dir() string { return m.dir }

// Get returns the stored copy of url. A miss is (nil, nil); an expired
// entry is (data, ErrExpired).
func (m *Mirror) Get(url string) ([]byte, error) {
	path := m.path(url)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if m.ttl > 0 && time.Since(info.ModTime()) > m.ttl {
		return data, ErrExpired
	}
	return data, nil
}

// Set stores data for url, resetting its age.
func (m *Mirror) Set(url string, data []byte) error {
	tmp, err := os.CreateTemp(m.dir, ".mirror-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), m.path(url))
}

func (m *Mirror) path(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(m.dir, hex.EncodeToString(h[:]))
}
