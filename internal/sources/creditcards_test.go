package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/usersync/internal/httpclient"
	"github.com/stacklok/usersync/internal/users"
)

const threeCardsJSON = `{
  "status": "OK",
  "code": 200,
  "total": 3,
  "data": [
    {"type": "Visa", "number": "4716383398842", "expiration": "03/27", "owner": "Alice Smith"},
    {"type": "MasterCard", "number": "5400331422233", "expiration": "11/26", "owner": "Bob Jones"},
    {"type": "American Express", "number": "3716820019271", "expiration": "07/28", "owner": "Carol White"}
  ]
}`

func TestCreditCardClient_GetCreditCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		quantity      int
		status        int
		body          string
		expectedCount int
	}{
		{name: "valid envelope", quantity: 3, status: http.StatusOK, body: threeCardsJSON, expectedCount: 3},
		{name: "fewer than requested", quantity: 5, status: http.StatusOK, body: threeCardsJSON, expectedCount: 3},
		{name: "more than requested is truncated", quantity: 2, status: http.StatusOK, body: threeCardsJSON, expectedCount: 2},
		{name: "server error", quantity: 3, status: http.StatusServiceUnavailable, body: ``, expectedCount: 0},
		{name: "envelope is an array", quantity: 3, status: http.StatusOK, body: `[{"type": "Visa"}]`, expectedCount: 0},
		{name: "missing data", quantity: 3, status: http.StatusOK, body: `{"status": "OK"}`, expectedCount: 0},
		{name: "data not an array", quantity: 3, status: http.StatusOK, body: `{"data": {"type": "Visa"}}`, expectedCount: 0},
		{name: "empty data", quantity: 3, status: http.StatusOK, body: `{"data": []}`, expectedCount: 0},
		{name: "invalid json", quantity: 3, status: http.StatusOK, body: `{"data": [`, expectedCount: 0},
		{name: "data items not objects", quantity: 3, status: http.StatusOK, body: `{"data": [1, 2, 3]}`, expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			server.Config.SetKeepAlivesEnabled(false)
			defer server.Close()

			client := NewCreditCardClient(httpclient.NewDefaultClient(5*time.Second), server.URL)
			result := client.GetCreditCards(context.Background(), tt.quantity)
			require.NotNil(t, result)
			assert.Len(t, result, tt.expectedCount)
		})
	}
}

func TestCreditCardClient_RequestsQuantity(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/creditCards", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("_quantity"))
		_, _ = w.Write([]byte(threeCardsJSON))
	}))
	server.Config.SetKeepAlivesEnabled(false)
	defer server.Close()

	client := NewCreditCardClient(httpclient.NewDefaultClient(5*time.Second), server.URL)
	result := client.GetCreditCards(context.Background(), 3)

	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, result, 3)
	assert.Equal(t, users.CreditCardRecord{
		Type:       "Visa",
		Number:     "4716383398842",
		Expiration: "03/27",
		Owner:      "Alice Smith",
	}, result[0])
	assert.Equal(t, "Carol White", result[2].Owner)
}

func TestCreditCardClient_NonPositiveQuantity(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(threeCardsJSON))
	}))
	defer server.Close()

	client := NewCreditCardClient(httpclient.NewDefaultClient(5*time.Second), server.URL)

	for _, quantity := range []int{0, -1} {
		result := client.GetCreditCards(context.Background(), quantity)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	}
	assert.Equal(t, int32(0), calls.Load())
}
