package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	limiter "github.com/ulule/limiter/v3"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	l, err := New("1-M", nil)
	require.NoError(t, err)
	limited := Handler{Limiter: l, Key: KeyBySessionOrIP}.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/checkout/submit", nil)
	req.Header.Set("X-Session-ID", "s-1")

	rr1 := httptest.NewRecorder()
	limited.ServeHTTP(rr1, req)
	require.Equal(t, http.StatusOK, rr1.Code)
	require.Equal(t, "1", rr1.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rr1.Header().Get("X-RateLimit-Remaining"))

	rr2 := httptest.NewRecorder()
	limited.ServeHTTP(rr2, req)
	require.Equal(t, http.StatusTooManyRequests, rr2.Code)
	require.NotEmpty(t, rr2.Header().Get("Retry-After"))
	require.Contains(t, rr2.Body.String(), "RATE_LIMITED")

	other := httptest.NewRequest(http.MethodPost, "/checkout/submit", nil)
	other.Header.Set("X-Session-ID", "s-2")
	rr3 := httptest.NewRecorder()
	limited.ServeHTTP(rr3, other)
	require.Equal(t, http.StatusOK, rr3.Code)
}

func TestRedisStoreSharesBuckets(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	store, err := NewRedisStore(client)
	require.NoError(t, err)
	first, err := New("2-M", store)
	require.NoError(t, err)
	second, err := New("2-M", store)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = first.Get(ctx, "session:a")
	require.NoError(t, err)
	_, err = second.Get(ctx, "session:a")
	require.NoError(t, err)
	res, err := first.Get(ctx, "session:a")
	require.NoError(t, err)
	require.True(t, res.Reached)
}

type failingLimiter struct{}

func (failingLimiter) Get(context.Context, string) (limiter.Context, error) {
	return limiter.Context{}, errors.New("store down")
}

func TestHandlerFailsOpen(t *testing.T) {
	var reported error
	h := Handler{Limiter: failingLimiter{}, Key: KeyBySessionOrIP, OnError: func(err error) { reported = err }}
	rr := httptest.NewRecorder()
	h.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualError(t, reported, "store down")
}

func TestNewRejectsBadRate(t *testing.T) {
	_, err := New("ten per minute", nil)
	require.Error(t, err)
}
