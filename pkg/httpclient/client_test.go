package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_SetsProfileHeaders(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	}))
	defer server.Close()

	body, ct, err := NewClient(CloudflareClient, 0).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, "curl/8.7.1", gotUA)
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := NewClient(BrowserClient, 0).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestParseClientType(t *testing.T) {
	ct, err := ParseClientType("")
	require.NoError(t, err)
	assert.Equal(t, BrowserClient, ct)

	ct, err = ParseClientType("feed")
	require.NoError(t, err)
	assert.Equal(t, FeedClient, ct)

	_, err = ParseClientType("netscape")
	assert.Error(t, err)
}
