package objectstore

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	signer, err := NewSigner("test-secret", "https://api.test/")
	require.NoError(t, err)
	return signer
}

func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/v1/artifacts", parsed.Path)
	return parsed.Query().Get("token")
}

func TestSignerRoundTripAndExpiry(t *testing.T) {
	signer := newTestSigner(t)
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	link, expires, err := signer.Sign("t1/job/tabular_export_2026-01-02.csv", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://api.test/v1/artifacts?token="))
	assert.Equal(t, issued.Add(15*time.Minute), expires)

	token := tokenFrom(t, link)
	got, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "t1/job/tabular_export_2026-01-02.csv", got)

	signer.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignerMintsDistinctLinksWithinOneSecond(t *testing.T) {
	signer := newTestSigner(t)
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	signer.now = func() time.Time { return issued }

	first, _, err := signer.Sign("t1/a.csv", time.Minute)
	require.NoError(t, err)
	second, _, err := signer.Sign("t1/a.csv", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	for _, link := range []string{first, second} {
		got, err := signer.Verify(tokenFrom(t, link))
		require.NoError(t, err)
		assert.Equal(t, "t1/a.csv", got)
	}
}

func TestSignerRejectsForeignTokens(t *testing.T) {
	signer := newTestSigner(t)
	other, err := NewSigner("other-secret", "https://api.test")
	require.NoError(t, err)

	link, _, err := other.Sign("t1/a.csv", time.Minute)
	require.NoError(t, err)
	_, err = signer.Verify(tokenFrom(t, link))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSigner(" ", "")
	assert.Error(t, err)
	_, _, err = signer.Sign("t1/a.csv", 0)
	assert.Error(t, err)
}

func TestFileSystemLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileSystem(t.TempDir(), newTestSigner(t))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "t1/job-1/archive.zip", []byte("zip-bytes"), "application/zip"))
	data, err := store.Get(ctx, "t1/job-1/archive.zip")
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))

	link, err := store.SignedURL(ctx, "t1/job-1/archive.zip", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, link, "token=")

	require.NoError(t, store.Delete(ctx, "t1/job-1/archive.zip"))
	require.NoError(t, store.Delete(ctx, "t1/job-1/archive.zip"))
	_, err = store.Get(ctx, "t1/job-1/archive.zip")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestPathsCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileSystem(t.TempDir(), nil)
	require.NoError(t, err)
	memory := NewMemory(nil)
	for _, bad := range []string{"", "/etc/passwd", "../secret", "a/../../b", "a\\b"} {
		assert.ErrorIs(t, store.Put(ctx, bad, []byte("x"), ""), ErrInvalidPath, bad)
		assert.ErrorIs(t, memory.Put(ctx, bad, []byte("x"), ""), ErrInvalidPath, bad)
	}
}

func TestMemoryCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(newTestSigner(t))
	payload := []byte("abc")
	require.NoError(t, store.Put(ctx, "t1/x", payload, "text/plain"))
	payload[0] = 'z'
	data, err := store.Get(ctx, "t1/x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, 1, store.Len())
}

type flakyStore struct {
	Store
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakyStore) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if f.calls.Add(1) <= f.failures {
		return f.err
	}
	return f.Store.Put(ctx, objectPath, data, contentType)
}

func (f *flakyStore) Get(ctx context.Context, objectPath string) ([]byte, error) {
	f.calls.Add(1)
	return f.Store.Get(ctx, objectPath)
}

func TestRetryingRecoversFromTransientFailures(t *testing.T) {
	flaky := &flakyStore{Store: NewMemory(nil), failures: 2, err: errors.New("connection reset")}
	retrying := NewRetrying(flaky, 3, nil)
	retrying.initial = time.Millisecond

	require.NoError(t, retrying.Put(context.Background(), "t1/x", []byte("x"), ""))
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestRetryingIsBounded(t *testing.T) {
	flaky := &flakyStore{Store: NewMemory(nil), failures: 100, err: errors.New("unavailable")}
	retrying := NewRetrying(flaky, 2, nil)
	retrying.initial = time.Millisecond

	err := retrying.Put(context.Background(), "t1/x", []byte("x"), "")
	require.Error(t, err)
	assert.Equal(t, int32(3), flaky.calls.Load())
}

func TestRetryingDoesNotRetryMissingObjects(t *testing.T) {
	flaky := &flakyStore{Store: NewMemory(nil)}
	retrying := NewRetrying(flaky, 5, nil)
	retrying.initial = time.Millisecond

	_, err := retrying.Get(context.Background(), "t1/missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, int32(1), flaky.calls.Load())
}
