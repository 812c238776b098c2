package statum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverSuccessFlag(t *testing.T) {
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "queued"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res := c.Deliver(context.Background(), Credentials{ConsumerKey: "ck", ConsumerSecret: "cs"},
		"254712345678", decimal.NewFromInt(100))

	assert.True(t, res.Succeeded())
	assert.Equal(t, "ck", user)
	assert.Equal(t, "cs", pass)
	assert.Contains(t, res.Raw, "queued")
}

func TestDeliverStatusCodeHeuristic(t *testing.T) {
	cases := []struct {
		body string
		ok   bool
	}{
		{`{"status_code":200}`, true},
		{`{"status_code":"200"}`, true}, // provider sometimes quotes the code
		{`{"status_code":403,"message":"denied"}`, false},
		{`{"success":false,"status_code":"oops"}`, false},
		{`{}`, false},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(c.body))
		}))
		res := NewClient(srv.URL).Deliver(context.Background(), Credentials{}, "254712345678", decimal.NewFromInt(10))
		srv.Close()
		assert.Equal(t, c.ok, res.Succeeded(), "body %s", c.body)
		assert.Equal(t, c.body, res.Raw)
	}
}

func TestDeliverTransportAndHTTPFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	c := NewClient(srv.URL)
	res := c.Deliver(context.Background(), Credentials{}, "254712345678", decimal.NewFromInt(10))
	srv.Close()
	require.False(t, res.Succeeded())
	assert.Contains(t, res.Message, "502")
	assert.Contains(t, res.Raw, "gateway exploded")

	// server gone: raw body carries the error text for audit
	res = c.Deliver(context.Background(), Credentials{}, "254712345678", decimal.NewFromInt(10))
	assert.False(t, res.Succeeded())
	assert.NotEmpty(t, res.Raw)
}
