package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/usersync/internal/httpclient"
	"github.com/stacklok/usersync/internal/users"
)

const twoUsersJSON = `[
  {
    "id": 1,
    "name": "Leanne Graham",
    "username": "Bret",
    "email": "Sincere@april.biz",
    "address": {
      "street": "Kulas Light",
      "suite": "Apt. 556",
      "city": "Gwenborough",
      "zipcode": "92998-3874",
      "geo": {"lat": "-37.3159", "lng": "81.1496"}
    },
    "phone": "1-770-736-8031 x56442",
    "website": "hildegard.org",
    "company": {
      "name": "Romaguera-Crona",
      "catchPhrase": "Multi-layered client-server neural-net",
      "bs": "harness real-time e-markets"
    }
  },
  {
    "id": 2,
    "name": "Ervin Howell",
    "username": "Antonette",
    "email": "Shanna@melissa.tv",
    "address": {
      "street": "Victor Plains",
      "suite": "Suite 879",
      "city": "Wisokyburgh",
      "zipcode": "90566-7771",
      "geo": {"lat": "-43.9509", "lng": "-34.4618"}
    },
    "phone": "010-692-6593 x09125",
    "website": "anastasia.net",
    "company": {
      "name": "Deckow-Crist",
      "catchPhrase": "Proactive didactic contingency",
      "bs": "synergize scalable supply-chains"
    }
  }
]`

func newDirectoryServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func TestDirectoryClient_GetUsers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		body          string
		expectedCount int
	}{
		{
			name:          "valid payload",
			status:        http.StatusOK,
			body:          twoUsersJSON,
			expectedCount: 2,
		},
		{
			name:          "empty array",
			status:        http.StatusOK,
			body:          `[]`,
			expectedCount: 0,
		},
		{
			name:          "server error",
			status:        http.StatusInternalServerError,
			body:          `oops`,
			expectedCount: 0,
		},
		{
			name:          "not found",
			status:        http.StatusNotFound,
			body:          ``,
			expectedCount: 0,
		},
		{
			name:          "invalid json",
			status:        http.StatusOK,
			body:          `[{"id": 1`,
			expectedCount: 0,
		},
		{
			name:          "object instead of array",
			status:        http.StatusOK,
			body:          `{"id": 1}`,
			expectedCount: 0,
		},
		{
			name:          "record without id",
			status:        http.StatusOK,
			body:          `[{"name": "no id"}]`,
			expectedCount: 0,
		},
		{
			name:          "string id",
			status:        http.StatusOK,
			body:          `[{"id": "1"}]`,
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newDirectoryServer(t, tt.status, tt.body)
			client, err := NewDirectoryClient(httpclient.NewDefaultClient(5*time.Second), server.URL)
			require.NoError(t, err)

			result := client.GetUsers(context.Background())
			require.NotNil(t, result)
			assert.Len(t, result, tt.expectedCount)
		})
	}
}

func TestDirectoryClient_DecodesNestedRecords(t *testing.T) {
	t.Parallel()

	server := newDirectoryServer(t, http.StatusOK, twoUsersJSON)
	client, err := NewDirectoryClient(httpclient.NewDefaultClient(5*time.Second), server.URL+"/")
	require.NoError(t, err)

	result := client.GetUsers(context.Background())
	require.Len(t, result, 2)

	first := result[0]
	assert.Equal(t, users.Profile{
		ID:       1,
		Name:     "Leanne Graham",
		Username: "Bret",
		Email:    "Sincere@april.biz",
		Phone:    "1-770-736-8031 x56442",
		Website:  "hildegard.org",
	}, first.Profile())
	assert.Equal(t, "Kulas Light", first.Address.Street)
	assert.Equal(t, "81.1496", first.Address.Geo.Lng)
	assert.Equal(t, "Multi-layered client-server neural-net", first.Company.CatchPhrase)
	assert.Equal(t, int64(2), result[1].ID)
}

func TestDirectoryClient_UnreachableHost(t *testing.T) {
	t.Parallel()

	client, err := NewDirectoryClient(httpclient.NewDefaultClient(time.Second), "http://invalid-host-does-not-exist.local:9999")
	require.NoError(t, err)

	result := client.GetUsers(context.Background())
	assert.Empty(t, result)
}

func TestDirectoryClient_KeepsRecordsWithAbsentKeys(t *testing.T) {
	t.Parallel()

	body := `[{"id": 3, "name": "Clementine Bauch", "username": "Samantha", "email": "Nathan@yesenia.net",
		"phone": "", "website": "ramiro.info",
		"address": {"street": "Douglas Extension", "city": "McKenziehaven", "zipcode": "59590-4157",
			"geo": {"lat": "-68.6102", "lng": "-47.0653"}},
		"company": {"name": "Romaguera-Jacobson", "catchPhrase": "Face to face", "bs": "e-enable"}}]`
	server := newDirectoryServer(t, http.StatusOK, body)
	client, err := NewDirectoryClient(httpclient.NewDefaultClient(5*time.Second), server.URL)
	require.NoError(t, err)

	result := client.GetUsers(context.Background())
	require.Len(t, result, 1)
	assert.NoError(t, result[0].Profile().Validate(), "an empty phone is a value")

	var validationErr *users.ValidationError
	require.ErrorAs(t, result[0].Address.Validate(), &validationErr)
	assert.Equal(t, []string{"suite"}, validationErr.Fields)
}
