package commcare

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"photoaudit/internal/structures"
	"photoaudit/internal/testutil"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string, retries int) *Client {
	t.Helper()
	conf := &structures.Config{CommCare: structures.CommCareConfig{
		BaseURL:    baseURL + "/",
		MaxRetries: retries,
		Timeout:    5 * time.Second,
	}}
	c := NewClient(conf, Credentials{Username: "user", APIKey: "key"}, &testutil.MockLogger{})
	c.backoff = time.Millisecond
	return c
}

func TestClient_ListFormsPaginates(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		user, key, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "key", key)
		assert.Equal(t, "/a/demo/api/v0.5/form/", r.URL.Path)
		assert.Equal(t, "app1", r.URL.Query().Get("app_id"))

		switch r.URL.Query().Get("offset") {
		case "":
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("received_on_start"))
			fmt.Fprint(w, `{"meta":{"next":"?app_id=app1&limit=2&offset=2","total_count":3},"objects":[{"id":"a"},{"id":"b"}]}`)
		case "2":
			fmt.Fprint(w, `{"meta":{"next":null,"total_count":3},"objects":[{"id":"c"}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	forms, err := testClient(t, srv.URL, 0).ListForms(context.Background(), "demo", FormQuery{
		AppID: "app1", Limit: 2, ReceivedStart: "2024-01-01",
	})
	require.NoError(t, err)
	require.Len(t, forms, 3)
	assert.Equal(t, "c", forms[2].ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ListFormsMaxForms(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"meta":{"next":"?offset=2"},"objects":[{"id":"a"},{"id":"b"}]}`)
	}))
	defer srv.Close()

	forms, err := testClient(t, srv.URL, 0).ListForms(context.Background(), "demo", FormQuery{AppID: "x", MaxForms: 3})
	require.NoError(t, err)
	assert.Len(t, forms, 3)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "payload")
	}))
	defer srv.Close()

	data, err := testClient(t, srv.URL, 3).Download(context.Background(), srv.URL+"/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, 2).Download(context.Background(), srv.URL)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.HTTPStatusCode())
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, 3).ListForms(context.Background(), "demo", FormQuery{AppID: "x"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, se.Body, "bad credentials")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>")
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL, 0).ListForms(context.Background(), "demo", FormQuery{AppID: "x"})
	assert.Error(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 5)
	c.backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Download(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Second, retryAfter(resp, time.Second, time.Minute))

	resp.Header.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, retryAfter(resp, time.Second, time.Minute))
	assert.Equal(t, 5*time.Second, retryAfter(resp, time.Second, 5*time.Second))
	assert.Equal(t, time.Second, retryAfter(nil, time.Second, 0))
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 503, 599} {
		assert.True(t, isRetryableStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 404} {
		assert.False(t, isRetryableStatus(code), code)
	}
}

func TestResolve(t *testing.T) {
	got, err := resolve("https://h/a/d/api/v0.5/form/?limit=2", "?limit=2&offset=2")
	require.NoError(t, err)
	assert.Equal(t, "https://h/a/d/api/v0.5/form/?limit=2&offset=2", got)

	got, err = resolve("https://h/a/d/api/v0.5/form/?limit=2", "/a/d/api/v0.5/form/?offset=4")
	require.NoError(t, err)
	assert.Equal(t, "https://h/a/d/api/v0.5/form/?offset=4", got)
}
