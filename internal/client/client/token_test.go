package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/clubattach/internal/client/models"
	"github.com/dmitrijs2005/clubattach/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "member-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, tokenExpired("", now))
	assert.False(t, tokenExpired("opaque-token", now))
	assert.False(t, tokenExpired(signed(t, now.Add(time.Hour)), now))
	assert.True(t, tokenExpired(signed(t, now.Add(-time.Minute)), now))
}

func TestBearer_InjectsHeader(t *testing.T) {
	p := &fakePortal{}
	tok := signed(t, time.Now().Add(time.Hour))
	c := newTestClient(t, p, WithAccessToken(tok, nil))

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, []string{"Bearer " + tok}, p.auth)

	c.SetAccessToken("other")
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "Bearer other", p.auth[1])
}

func TestBearer_SetAccessTokenWithoutOption(t *testing.T) {
	p := &fakePortal{}
	c := newTestClient(t, p)

	require.NoError(t, c.Ping(context.Background()))
	c.SetAccessToken("later")
	require.NoError(t, c.Ping(context.Background()))

	assert.Equal(t, []string{"", "Bearer later"}, p.auth)
}

func TestBearer_ExpiredWithoutRefresherFailsLocally(t *testing.T) {
	p := &fakePortal{}
	c := newTestClient(t, p, WithAccessToken(signed(t, time.Now().Add(-time.Hour)), nil))

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Empty(t, p.auth, "no request reached the server")
}

func TestBearer_ExpiredIsRefreshedBeforeSending(t *testing.T) {
	p := &fakePortal{}
	fresh := signed(t, time.Now().Add(time.Hour))
	c := newTestClient(t, p, WithAccessToken(signed(t, time.Now().Add(-time.Hour)), func(context.Context) (string, error) {
		return fresh, nil
	}))

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, []string{"Bearer " + fresh}, p.auth)
}

func TestBearer_RetriesOnceOn401(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var refreshes atomic.Int32
	c, err := NewHTTPClient(ts.URL, WithAccessToken("stale", func(context.Context) (string, error) {
		refreshes.Add(1)
		return "good", nil
	}))
	require.NoError(t, err)

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestBearer_StreamedUploadIsNotReplayed(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL, WithAccessToken("stale", func(context.Context) (string, error) {
		return "new", nil
	}))
	require.NoError(t, err)

	_, err = c.UploadBatch(context.Background(), []models.RawFile{
		models.NewRawFileFromBytes("a.txt", "text/plain", []byte(strings.Repeat("x", 10))),
	}, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), hits.Load())
}

func TestBearer_RefreshFailure(t *testing.T) {
	p := &fakePortal{}
	c := newTestClient(t, p, WithAccessToken(signed(t, time.Now().Add(-time.Hour)), func(context.Context) (string, error) {
		return "", errors.New("session revoked")
	}))

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "session revoked")
}
