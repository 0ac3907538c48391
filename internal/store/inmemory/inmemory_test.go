package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/usersync/internal/store"
	"github.com/stacklok/usersync/internal/users"
)

func testAddress() users.AddressRecord {
	return users.AddressRecord{
		Street:  "Kulas Light",
		Suite:   "Apt. 556",
		City:    "Gwenborough",
		Zipcode: "92998-3874",
		Geo:     users.GeoRecord{Lat: "-37.3159", Lng: "81.1496"},
	}
}

func testCompany() users.CompanyRecord {
	return users.CompanyRecord{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered", BS: "harness e-markets"}
}

func testCard() users.CreditCardRecord {
	return users.CreditCardRecord{Type: "Visa", Number: "4716383398842", Expiration: "03/27", Owner: "Leanne Graham"}
}

func testProfile(id int64) users.Profile {
	return users.Profile{ID: id, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz"}
}

// createLinkedUser runs the address, company, card, flush, user sequence
func createLinkedUser(t *testing.T, s store.Store, id int64) *users.User {
	t.Helper()
	ctx := context.Background()

	addr, err := s.CreateAddress(testAddress())
	require.NoError(t, err)
	company, err := s.CreateCompany(testCompany())
	require.NoError(t, err)
	card, err := s.CreateCreditCard(testCard())
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	u, err := s.CreateUser(testProfile(id), addr.ID, company.ID, &card.ID)
	require.NoError(t, err)
	return u
}

func TestStore_CreateOnlyStages(t *testing.T) {
	t.Parallel()

	s := New()
	addr, err := s.CreateAddress(testAddress())
	require.NoError(t, err)
	assert.Zero(t, addr.ID, "staged entities have no id before a flush")

	require.NoError(t, s.Flush(context.Background()))
	assert.NotZero(t, addr.ID)
	assert.Equal(t, Counts{}, s.CommittedCounts(), "flush must not commit")
}

func TestStore_CommitAndRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	createLinkedUser(t, s, 1)
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Commit())

	createLinkedUser(t, s, 2)
	require.NoError(t, s.Flush(ctx))

	got, err := s.GetUserByID(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got, "flushed user is visible inside the transaction")

	s.Rollback()

	got, err = s.GetUserByID(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, Counts{Users: 1, Addresses: 1, Companies: 1, CreditCards: 1}, s.CommittedCounts())
}

func TestStore_CommitFlushesStagedEntities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	createLinkedUser(t, tx.Store(), 7)
	require.NoError(t, tx.Commit(ctx))

	committed := s.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, int64(7), committed[0].User.ID)
	assert.Equal(t, Counts{Users: 1, Addresses: 1, Companies: 1, CreditCards: 1}, s.CommittedCounts())
}

func TestStore_GetUserByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	got, err := s.GetUserByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	staged := createLinkedUser(t, s, 42)
	got, err = s.GetUserByID(ctx, 42)
	require.NoError(t, err)
	assert.Same(t, staged, got, "staged users are visible before the flush")
}

func TestStore_NoContentDeduplication(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	first := createLinkedUser(t, s, 1)
	second := createLinkedUser(t, s, 2)
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Commit())

	assert.NotEqual(t, first.AddressID, second.AddressID)
	assert.NotEqual(t, first.CompanyID, second.CompanyID)
	assert.Equal(t, Counts{Users: 2, Addresses: 2, Companies: 2, CreditCards: 2}, s.CommittedCounts())
}

func TestStore_Constraints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("duplicate user id across flushes", func(t *testing.T) {
		t.Parallel()
		s := New()
		require.NoError(t, s.Seed(testProfile(1)))

		createLinkedUser(t, s, 1)
		err := s.Flush(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate key")
	})

	t.Run("credit card linked twice", func(t *testing.T) {
		t.Parallel()
		s := New()

		u := createLinkedUser(t, s, 1)
		require.NoError(t, s.Flush(ctx))

		_, err := s.CreateUser(testProfile(2), u.AddressID, u.CompanyID, u.CreditCardID)
		require.NoError(t, err)
		err = s.Flush(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credit card")
	})

	t.Run("unknown address", func(t *testing.T) {
		t.Parallel()
		s := New()

		_, err := s.CreateUser(testProfile(1), 99, 98, nil)
		require.NoError(t, err)
		err = s.Flush(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "foreign key violation")
	})

	t.Run("unflushed reference", func(t *testing.T) {
		t.Parallel()
		s := New()

		addr, err := s.CreateAddress(testAddress())
		require.NoError(t, err)
		_, err = s.CreateUser(testProfile(1), addr.ID, 1, nil)
		require.ErrorIs(t, err, store.ErrUnassignedReference)
	})
}

func TestStore_ListUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	createLinkedUser(t, s, 3)
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Seed(testProfile(1)))

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].User.ID)
	assert.Nil(t, list[0].CreditCard)
	assert.Equal(t, int64(3), list[1].User.ID)
	require.NotNil(t, list[1].CreditCard)
	assert.Equal(t, "Visa", list[1].CreditCard.Type)
	assert.Equal(t, "Gwenborough", list[1].Address.City)

	assert.Equal(t, list, s.Committed())
}

func TestTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	createLinkedUser(t, tx.Store(), 1)
	require.NoError(t, tx.Store().Flush(ctx))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx), "rollback after commit is a no-op")
	assert.Equal(t, 1, s.CommittedCounts().Users)

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	createLinkedUser(t, tx.Store(), 2)
	require.NoError(t, tx.Store().Flush(ctx))
	require.NoError(t, tx.Rollback(ctx))
	assert.Equal(t, 1, s.CommittedCounts().Users)
}
