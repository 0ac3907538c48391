package httpclient_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/usersync/internal/httpclient"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := httpclient.NewHTTPError(404, "http://example.com/users", "404 Not Found")
	assert.Equal(t, "HTTP 404 for URL http://example.com/users: 404 Not Found", err.Error())
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "http error", err: httpclient.NewHTTPError(502, "u", "m"), expected: 502},
		{name: "wrapped http error", err: fmt.Errorf("fetch: %w", httpclient.NewHTTPError(500, "u", "m")), expected: 500},
		{name: "other error", err: errors.New("boom"), expected: 0},
		{name: "nil", err: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, httpclient.StatusCode(tt.err))
		})
	}
}
