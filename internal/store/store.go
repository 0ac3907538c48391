// Package store persists synchronized users and their related entities.
//
// A Store is a unit of work bound to a single transaction. Create operations
// only stage entities in memory; Flush writes everything staged so far, in
// staging order, and assigns primary keys to the returned entities. Nothing
// a Store does is durable until the owner of the transaction commits it.
package store

import (
	"context"
	"errors"

	"github.com/stacklok/usersync/internal/users"
)

var (
	// ErrUnassignedReference is returned when a user is staged with a related
	// entity that has not been flushed yet
	ErrUnassignedReference = errors.New("related entity has no assigned id")

	// ErrDuplicateUser is returned when a user id is staged twice
	ErrDuplicateUser = errors.New("user already staged")
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store,TxBeginner,Tx

// Store is the transaction-scoped repository used by a sync pass
type Store interface {
	// CreateAddress stages a new address
	CreateAddress(data users.AddressRecord) (*users.Address, error)
	// CreateCompany stages a new company
	CreateCompany(data users.CompanyRecord) (*users.Company, error)
	// CreateCreditCard stages a new credit card
	CreateCreditCard(data users.CreditCardRecord) (*users.CreditCard, error)
	// CreateUser stages a new user linked to already flushed entities.
	// creditCardID may be nil.
	CreateUser(profile users.Profile, addressID, companyID int64, creditCardID *int64) (*users.User, error)
	// GetUserByID returns the user with the given upstream id, or nil if absent
	GetUserByID(ctx context.Context, id int64) (*users.User, error)
	// ListUsers returns every stored user with its related entities, ordered by id
	ListUsers(ctx context.Context) ([]users.UserDetails, error)
	// Flush writes the staged entities without ending the transaction
	Flush(ctx context.Context) error
}

// Tx is an open transaction with a Store bound to it
type Tx interface {
	// Store returns the unit of work bound to this transaction
	Store() Store
	// Commit flushes anything still staged and makes every write durable
	Commit(ctx context.Context) error
	// Rollback discards the transaction. Calling it after Commit is a no-op.
	Rollback(ctx context.Context) error
}

// TxBeginner opens transactions
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}
