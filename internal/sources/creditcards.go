package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/stacklok/usersync/internal/httpclient"
	"github.com/stacklok/usersync/internal/users"
)

// creditCardClient reads cards from a FakerAPI-compatible API
type creditCardClient struct {
	httpClient httpclient.Client
	baseURL    string
}

// NewCreditCardClient creates a CreditCardClient that reads {baseURL}/creditCards
func NewCreditCardClient(httpClient httpclient.Client, baseURL string) CreditCardClient {
	return &creditCardClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetCreditCards requests quantity cards in one call. Failures degrade to an empty slice.
func (c *creditCardClient) GetCreditCards(ctx context.Context, quantity int) []users.CreditCardRecord {
	if quantity <= 0 {
		return []users.CreditCardRecord{}
	}

	endpoint := c.buildURL(quantity)
	slog.Debug("Fetching credit cards", "url", endpoint, "quantity", quantity)

	data, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		slog.Warn("Failed to fetch credit card data, returning empty list",
			"url", endpoint, "error", err)
		return []users.CreditCardRecord{}
	}

	cards, err := decodeCreditCards(data)
	if err != nil {
		slog.Error("Credit card API returned unexpected data structure, returning empty list",
			"url", endpoint, "error", err)
		return []users.CreditCardRecord{}
	}

	if len(cards) > quantity {
		cards = cards[:quantity]
	}
	return cards
}

func (c *creditCardClient) buildURL(quantity int) string {
	q := url.Values{}
	q.Set("_quantity", strconv.Itoa(quantity))
	return c.baseURL + "/creditCards?" + q.Encode()
}

// decodeCreditCards extracts the "data" array of a {"data": [...]} envelope
func decodeCreditCards(data []byte) ([]users.CreditCardRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	envelope := gjson.ParseBytes(data)
	if !envelope.IsObject() {
		return nil, fmt.Errorf("expected an object, got %s", envelope.Type)
	}

	payload := envelope.Get("data")
	if !payload.Exists() {
		return nil, fmt.Errorf("missing data field")
	}
	if !payload.IsArray() {
		return nil, fmt.Errorf("data field is not an array")
	}
	if len(payload.Array()) == 0 {
		return nil, fmt.Errorf("data field is empty")
	}

	var cards []users.CreditCardRecord
	if err := json.Unmarshal([]byte(payload.Raw), &cards); err != nil {
		return nil, fmt.Errorf("failed to decode credit cards: %w", err)
	}
	return cards, nil
}
