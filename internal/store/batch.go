package store

import (
	"context"
	"fmt"

	"github.com/stacklok/usersync/internal/users"
)

// BatchWriter persists single entities on behalf of Batch.Flush
type BatchWriter interface {
	WriteAddress(ctx context.Context, a *users.Address) (int64, error)
	WriteCompany(ctx context.Context, c *users.Company) (int64, error)
	WriteCreditCard(ctx context.Context, c *users.CreditCard) (int64, error)
	WriteUser(ctx context.Context, u *users.User) error
}

type stagedWrite struct {
	address *users.Address
	company *users.Company
	card    *users.CreditCard
	user    *users.User
}

// Batch is the ordered list of entities staged since the last flush.
// It is shared by the Store implementations.
type Batch struct {
	writes []stagedWrite
}

// StageAddress validates data and stages an address
func (b *Batch) StageAddress(data users.AddressRecord) (*users.Address, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	a := &users.Address{
		Street:  data.Street,
		Suite:   data.Suite,
		City:    data.City,
		Zipcode: data.Zipcode,
		GeoLat:  data.Geo.Lat,
		GeoLng:  data.Geo.Lng,
	}
	b.writes = append(b.writes, stagedWrite{address: a})
	return a, nil
}

// StageCompany validates data and stages a company
func (b *Batch) StageCompany(data users.CompanyRecord) (*users.Company, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	c := &users.Company{
		Name:        data.Name,
		CatchPhrase: data.CatchPhrase,
		BS:          data.BS,
	}
	b.writes = append(b.writes, stagedWrite{company: c})
	return c, nil
}

// StageCreditCard validates data and stages a credit card
func (b *Batch) StageCreditCard(data users.CreditCardRecord) (*users.CreditCard, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	c := &users.CreditCard{
		Type:       data.Type,
		Number:     data.Number,
		Expiration: data.Expiration,
		Owner:      data.Owner,
	}
	b.writes = append(b.writes, stagedWrite{card: c})
	return c, nil
}

// StageUser validates profile and the foreign keys and stages a user
func (b *Batch) StageUser(profile users.Profile, addressID, companyID int64, creditCardID *int64) (*users.User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if addressID <= 0 {
		return nil, fmt.Errorf("address for user %d: %w", profile.ID, ErrUnassignedReference)
	}
	if companyID <= 0 {
		return nil, fmt.Errorf("company for user %d: %w", profile.ID, ErrUnassignedReference)
	}
	if creditCardID != nil && *creditCardID <= 0 {
		return nil, fmt.Errorf("credit card for user %d: %w", profile.ID, ErrUnassignedReference)
	}
	if b.PendingUser(profile.ID) != nil {
		return nil, fmt.Errorf("user %d: %w", profile.ID, ErrDuplicateUser)
	}

	var cardID *int64
	if creditCardID != nil {
		id := *creditCardID
		cardID = &id
	}
	u := &users.User{
		ID:           profile.ID,
		Name:         profile.Name,
		Username:     profile.Username,
		Email:        profile.Email,
		Phone:        profile.Phone,
		Website:      profile.Website,
		AddressID:    addressID,
		CompanyID:    companyID,
		CreditCardID: cardID,
	}
	b.writes = append(b.writes, stagedWrite{user: u})
	return u, nil
}

// PendingUser returns the staged, not yet flushed, user with the given id
func (b *Batch) PendingUser(id int64) *users.User {
	for _, w := range b.writes {
		if w.user != nil && w.user.ID == id {
			return w.user
		}
	}
	return nil
}

// Len returns the number of staged entities
func (b *Batch) Len() int {
	return len(b.writes)
}

// Flush hands every staged entity to w in staging order and assigns the
// returned ids. The batch is empty afterwards, even when a write fails.
func (b *Batch) Flush(ctx context.Context, w BatchWriter) error {
	writes := b.writes
	b.writes = nil

	for _, sw := range writes {
		switch {
		case sw.address != nil:
			id, err := w.WriteAddress(ctx, sw.address)
			if err != nil {
				return fmt.Errorf("failed to insert address: %w", err)
			}
			sw.address.ID = id
		case sw.company != nil:
			id, err := w.WriteCompany(ctx, sw.company)
			if err != nil {
				return fmt.Errorf("failed to insert company: %w", err)
			}
			sw.company.ID = id
		case sw.card != nil:
			id, err := w.WriteCreditCard(ctx, sw.card)
			if err != nil {
				return fmt.Errorf("failed to insert credit card: %w", err)
			}
			sw.card.ID = id
		case sw.user != nil:
			if err := w.WriteUser(ctx, sw.user); err != nil {
				return fmt.Errorf("failed to insert user %d: %w", sw.user.ID, err)
			}
		}
	}
	return nil
}
