package sources

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/stacklok/usersync/internal/httpclient"
	"github.com/stacklok/usersync/internal/users"
)

const directorySchemaURL = "https://usersync.stacklok.dev/schema/directory.json"

//go:embed schema/directory.json
var directorySchemaJSON []byte

// directoryClient reads users from a JSONPlaceholder-compatible API
type directoryClient struct {
	httpClient httpclient.Client
	baseURL    string
	schema     *jsonschema.Schema
}

// NewDirectoryClient creates a DirectoryClient that reads {baseURL}/users
func NewDirectoryClient(httpClient httpclient.Client, baseURL string) (DirectoryClient, error) {
	schema, err := compileDirectorySchema()
	if err != nil {
		return nil, err
	}
	return &directoryClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		schema:     schema,
	}, nil
}

func compileDirectorySchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(directorySchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse directory schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(directorySchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add directory schema: %w", err)
	}
	schema, err := c.Compile(directorySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile directory schema: %w", err)
	}
	return schema, nil
}

// GetUsers fetches the full user list. Failures degrade to an empty slice.
func (c *directoryClient) GetUsers(ctx context.Context) []users.DirectoryUser {
	endpoint := c.baseURL + "/users"
	slog.Debug("Fetching users from directory", "url", endpoint)

	data, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		slog.Warn("Failed to fetch user data from directory, returning empty list",
			"url", endpoint, "error", err)
		return []users.DirectoryUser{}
	}

	result, err := c.decode(data)
	if err != nil {
		slog.Error("Directory returned unexpected data structure, returning empty list",
			"url", endpoint, "error", err)
		return []users.DirectoryUser{}
	}

	slog.Debug("Fetched users from directory", "url", endpoint, "count", len(result))
	return result
}

func (c *directoryClient) decode(data []byte) ([]users.DirectoryUser, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := c.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var result []users.DirectoryUser
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return result, nil
}
