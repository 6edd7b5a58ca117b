package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchange_RoundTrip(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte("<GovTalkMessage/>"))
	}))
	defer server.Close()

	client := NewClient(nil)
	resp, err := client.Exchange(context.Background(), server.URL, []byte("<GovTalkMessage>out</GovTalkMessage>"))
	require.NoError(t, err)

	assert.Equal(t, []byte("<GovTalkMessage/>"), resp)
	assert.Equal(t, []byte("<GovTalkMessage>out</GovTalkMessage>"), gotBody)
	assert.Equal(t, "text/xml; charset=utf-8", gotContentType)
}

func TestExchange_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(nil)
	_, err := client.Exchange(context.Background(), server.URL, []byte("<m/>"))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
}

func TestExchange_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening any more

	client := NewClient(nil)
	_, err := client.Exchange(context.Background(), server.URL, []byte("<m/>"))

	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestExchange_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(nil)
	_, err := client.Exchange(ctx, server.URL, []byte("<m/>"))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.NotNil(t, te.Err)
}
