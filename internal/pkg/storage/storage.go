package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store keeps uploaded binaries on the local filesystem and hands out
// expiring HMAC-signed download URLs for them.
type Store struct {
	basePath string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func New(basePath, secret string, ttl time.Duration) *Store {
	return &Store{
		basePath: basePath,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores data under key, creating parent directories as needed.
func (s *Store) Put(key string, data []byte) error {
	path := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Get reads the bytes stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Delete removes the bytes stored under key, ignoring missing files.
func (s *Store) Delete(key string) error {
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SignedPath returns a relative download path with an expiry and signature,
// e.g. /v1/files/{key}?expires=...&sig=...
func (s *Store) SignedPath(key string) string {
	expires := s.now().Add(s.ttl).Unix()
	sig := s.sign(key, expires)
	return fmt.Sprintf("/v1/files/%s?expires=%d&sig=%s", key, expires, sig)
}

// Verify checks a signature produced by SignedPath and that it has not
// expired.
func (s *Store) Verify(key string, expires int64, sig string) bool {
	if s.now().Unix() > expires {
		return false
	}
	expected := s.sign(key, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *Store) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strings.TrimPrefix(key, "/") + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
