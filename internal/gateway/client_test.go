package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripmarket/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	doFunc func(*http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestCreateOrderSendsMinorUnitsWithBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var in gateway.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, int64(50050), in.Amount)
		assert.Equal(t, "b-1", in.Notes["bookingId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"order_9","entity":"order","amount":50050,"currency":"INR","receipt":"r","status":"created","notes":{"bookingId":"b-1"}}`)
	}))
	defer srv.Close()

	c := gateway.NewClient("rzp_key", "rzp_secret", gateway.WithBaseURL(srv.URL))
	order, err := c.CreateOrder(context.Background(), gateway.OrderRequest{
		Amount:   50050,
		Currency: "INR",
		Receipt:  "r",
		Notes:    gateway.Notes{"bookingId": "b-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_9", order.ID)
	assert.Equal(t, "rzp_key", c.KeyID())
}

func TestCreateOrderUpstreamError(t *testing.T) {
	c := gateway.NewClient("k", "s", gateway.WithHTTPClient(&mockHTTPClient{
		doFunc: func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       io.NopCloser(strings.NewReader(`{"error":{"description":"amount too small"}}`)),
			}, nil
		},
	}))

	_, err := c.CreateOrder(context.Background(), gateway.OrderRequest{Amount: 10, Currency: "INR"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrBadStatusCode)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	c := gateway.NewClient("k", "s", gateway.WithHTTPClient(&mockHTTPClient{
		doFunc: func(*http.Request) (*http.Response, error) {
			t.Fatal("no request expected")
			return nil, nil
		},
	}))
	_, err := c.CreateOrder(context.Background(), gateway.OrderRequest{Amount: 0})
	assert.Error(t, err)
}
