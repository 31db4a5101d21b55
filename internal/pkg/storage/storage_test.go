package storage

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, at time.Time) *Store {
	t.Helper()
	s := New(t.TempDir(), "test-secret", time.Hour)
	s.now = func() time.Time { return at }
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := newTestStore(t, time.Now())
	key := "documents/repo-1/doc-1.pdf"

	require.NoError(t, s.Put(key, []byte("%PDF-1.4 payload")))

	data, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 payload"), data)

	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	assert.Error(t, err)

	// Deleting a missing key is not an error.
	assert.NoError(t, s.Delete(key))
}

func parseSignedPath(t *testing.T, signed string) (key string, expires int64, sig string) {
	t.Helper()
	u, err := url.Parse(signed)
	require.NoError(t, err)
	key = strings.TrimPrefix(u.Path, "/v1/files/")
	expires, err = strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	return key, expires, u.Query().Get("sig")
}

func TestSignedPathRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, now)

	signed := s.SignedPath("documents/repo-1/doc-1.pdf")
	key, expires, sig := parseSignedPath(t, signed)

	assert.Equal(t, "documents/repo-1/doc-1.pdf", key)
	assert.Equal(t, now.Add(time.Hour).Unix(), expires)
	assert.True(t, s.Verify(key, expires, sig))
}

func TestVerifyRejectsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, now)

	_, expires, sig := parseSignedPath(t, s.SignedPath("a.pdf"))

	s.now = func() time.Time { return now.Add(time.Hour + time.Second) }
	assert.False(t, s.Verify("a.pdf", expires, sig))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := newTestStore(t, time.Unix(1_700_000_000, 0))

	_, expires, sig := parseSignedPath(t, s.SignedPath("a.pdf"))

	assert.False(t, s.Verify("b.pdf", expires, sig), "different key")
	assert.False(t, s.Verify("a.pdf", expires+1, sig), "altered expiry")
	assert.False(t, s.Verify("a.pdf", expires, "deadbeef"+sig[8:]), "altered signature")

	other := New(t.TempDir(), "another-secret", time.Hour)
	other.now = s.now
	assert.False(t, other.Verify("a.pdf", expires, sig), "different secret")
}

func TestVerifyIgnoresLeadingSlash(t *testing.T) {
	s := newTestStore(t, time.Unix(1_700_000_000, 0))

	key, expires, sig := parseSignedPath(t, s.SignedPath("documents/x.pdf"))

	// Wildcard route params arrive with a leading slash.
	assert.True(t, s.Verify("/"+key, expires, sig))
}

func TestSignedPathFormat(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newTestStore(t, now)

	signed := s.SignedPath("x.pdf")
	assert.True(t, strings.HasPrefix(signed, fmt.Sprintf("/v1/files/x.pdf?expires=%d&sig=", now.Add(time.Hour).Unix())))
}
