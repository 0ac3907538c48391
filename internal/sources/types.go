package sources

import (
	"context"

	"github.com/stacklok/usersync/internal/users"
)

//go:generate mockgen -destination=mocks/mock_sources.go -package=mocks -source=types.go DirectoryClient,CreditCardClient

// DirectoryClient fetches the list of users from the upstream directory
type DirectoryClient interface {
	// GetUsers returns every user in the directory, or an empty slice if
	// the directory could not be read
	GetUsers(ctx context.Context) []users.DirectoryUser
}

// CreditCardClient fetches generated credit card records in a single batch
type CreditCardClient interface {
	// GetCreditCards returns at most quantity cards. An empty slice means
	// the upstream was unavailable or returned nothing usable.
	GetCreditCards(ctx context.Context, quantity int) []users.CreditCardRecord
}
