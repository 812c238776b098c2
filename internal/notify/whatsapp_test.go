package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReady(t *testing.T) {
	assert.False(t, NewWhatsApp("", "").Ready())
	assert.False(t, NewWhatsApp("http://gw", "").Ready())
	assert.False(t, NewWhatsApp("", "254700000001").Ready())
	assert.True(t, NewWhatsApp("http://gw", "254700000001").Ready())
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	// admin number normalized to canonical form
	w := NewWhatsApp(srv.URL, "0700000001")
	require.NoError(t, w.Send(context.Background(), "hello"))
	assert.Equal(t, "254700000001", got["to"])
	assert.Equal(t, "hello", got["message"])
}

func TestSendFailures(t *testing.T) {
	err := NewWhatsApp("", "").Send(context.Background(), "x")
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	err = NewWhatsApp(srv.URL, "254700000001").Send(context.Background(), "x")
	assert.ErrorContains(t, err, "503")
}
