package apify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/review-risk/internal/resilience"
)

const testActor = "compass~crawler-google-places"

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-token", WithBaseURL(srv.URL))
}

func TestStartRun(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantID        string
		wantErr       bool
		wantStatus    int
		wantTransient bool
	}{
		{
			name: "happy path",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/acts/"+testActor+"/runs", r.URL.Path)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var in PlaceReviewsInput
				require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
				require.Len(t, in.StartURLs, 1)
				assert.Equal(t, PlaceURL("ChIJ-1"), in.StartURLs[0].URL)
				assert.Equal(t, 50, in.MaxReviews)
				assert.Equal(t, "zh-TW", in.Language)

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"data":{"id":"run-1","status":"READY","defaultDatasetId":"ds-1"}}`))
			},
			wantID: "run-1",
		},
		{
			name: "auth error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"type":"token-not-valid"}}`))
			},
			wantErr:    true,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"type":"rate-limit-exceeded"}}`))
			},
			wantErr:       true,
			wantStatus:    http.StatusTooManyRequests,
			wantTransient: true,
		},
		{
			name: "missing run id",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":{}}`))
			},
			wantErr: true,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":`))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			run, err := c.StartRun(context.Background(), testActor, NewPlaceReviewsInput("ChIJ-1", 50, "zh-TW"))

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, run.ID)
				assert.Equal(t, "ds-1", run.DefaultDatasetID)
				return
			}

			require.Error(t, err)
			assert.Nil(t, run)
			assert.Equal(t, tt.wantTransient, resilience.IsTransient(err))
			if tt.wantStatus != 0 {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/acts/"+testActor+"/runs/run-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"id":"run-1","status":"RUNNING","defaultDatasetId":"ds-1"}}`))
	})

	run, err := c.GetRun(context.Background(), testActor, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.False(t, run.Terminal())
}

func TestDatasetItems(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/datasets/ds-1/items", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`[{"title":"Noodle House","reviewsCount":3,"reviews":[]}]`))
	})

	items, err := c.DatasetItems(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Noodle House","reviewsCount":3,"reviews":[]}]`, string(items))
}

func TestDatasetItems_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.DatasetItems(context.Background(), "ds-1")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "502")
}

func TestRunTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		StatusReady:     false,
		StatusRunning:   false,
		StatusSucceeded: true,
		StatusFailed:    true,
		StatusTimedOut:  true,
		StatusAborted:   true,
	} {
		assert.Equal(t, want, (&Run{Status: status}).Terminal(), status)
	}
}

func TestPlaceURL(t *testing.T) {
	assert.Equal(t,
		"https://www.google.com/maps/search/?api=1&query=a&query_place_id=ChIJ-abc",
		PlaceURL("ChIJ-abc"))
}
