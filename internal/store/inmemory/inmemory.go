// Package inmemory provides a map-backed store.Store with the same staging
// semantics as the Postgres store. Flushed writes stay invisible to
// Committed until Commit is called; Rollback discards them.
package inmemory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/stacklok/usersync/internal/store"
	"github.com/stacklok/usersync/internal/users"
)

type snapshot struct {
	addresses map[int64]users.Address
	companies map[int64]users.Company
	cards     map[int64]users.CreditCard
	users     map[int64]users.User
	nextID    int64
}

func newSnapshot() snapshot {
	return snapshot{
		addresses: map[int64]users.Address{},
		companies: map[int64]users.Company{},
		cards:     map[int64]users.CreditCard{},
		users:     map[int64]users.User{},
	}
}

func (s snapshot) clone() snapshot {
	return snapshot{
		addresses: maps.Clone(s.addresses),
		companies: maps.Clone(s.companies),
		cards:     maps.Clone(s.cards),
		users:     maps.Clone(s.users),
		nextID:    s.nextID,
	}
}

// Counts reports the number of rows per table
type Counts struct {
	Users       int
	Addresses   int
	Companies   int
	CreditCards int
}

// Store is an in-memory store.Store and store.TxBeginner
type Store struct {
	mu        sync.Mutex
	committed snapshot
	working   snapshot
	batch     store.Batch
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.TxBeginner = (*Store)(nil)
)

// New returns an empty store
func New() *Store {
	return &Store{
		committed: newSnapshot(),
		working:   newSnapshot(),
	}
}

// CreateAddress stages a new address
func (s *Store) CreateAddress(data users.AddressRecord) (*users.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.StageAddress(data)
}

// CreateCompany stages a new company
func (s *Store) CreateCompany(data users.CompanyRecord) (*users.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.StageCompany(data)
}

// CreateCreditCard stages a new credit card
func (s *Store) CreateCreditCard(data users.CreditCardRecord) (*users.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.StageCreditCard(data)
}

// CreateUser stages a new user
func (s *Store) CreateUser(profile users.Profile, addressID, companyID int64, creditCardID *int64) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.StageUser(profile, addressID, companyID, creditCardID)
}

// GetUserByID looks in the staged batch, then in the flushed state
func (s *Store) GetUserByID(_ context.Context, id int64) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.batch.PendingUser(id); u != nil {
		return u, nil
	}
	if u, ok := s.working.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// ListUsers returns the flushed users with their related entities, ordered by id
func (s *Store) ListUsers(_ context.Context) ([]users.UserDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return details(s.working), nil
}

// Flush applies the staged batch to the working state
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Flush(ctx, &writer{state: &s.working})
}

// Begin starts a transaction bound to this store
func (s *Store) Begin(_ context.Context) (store.Tx, error) {
	return &tx{store: s}, nil
}

// Commit flushes the staged batch and makes the working state durable.
// When the flush fails nothing is committed and the caller should roll back.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.batch.Flush(context.Background(), &writer{state: &s.working}); err != nil {
		return fmt.Errorf("failed to flush staged changes: %w", err)
	}
	s.committed = s.working.clone()
	return nil
}

// Rollback drops the staged batch and every flushed write since the last commit
func (s *Store) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = store.Batch{}
	s.working = s.committed.clone()
}

// Committed returns the committed users with their related entities, ordered by id
func (s *Store) Committed() []users.UserDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return details(s.committed)
}

// CommittedCounts returns the committed row counts
func (s *Store) CommittedCounts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Users:       len(s.committed.users),
		Addresses:   len(s.committed.addresses),
		Companies:   len(s.committed.companies),
		CreditCards: len(s.committed.cards),
	}
}

// Seed commits pre-existing users, each with fresh related entities
func (s *Store) Seed(profiles ...users.Profile) error {
	for _, p := range profiles {
		addr, err := s.CreateAddress(users.AddressRecord{
			Street: "seed", Suite: "seed", City: "seed", Zipcode: "seed",
			Geo: users.GeoRecord{Lat: "0", Lng: "0"},
		})
		if err != nil {
			return err
		}
		company, err := s.CreateCompany(users.CompanyRecord{Name: "seed", CatchPhrase: "seed", BS: "seed"})
		if err != nil {
			return err
		}
		if err := s.Flush(context.Background()); err != nil {
			return err
		}
		if _, err := s.CreateUser(p, addr.ID, company.ID, nil); err != nil {
			return err
		}
	}
	if err := s.Commit(); err != nil {
		s.Rollback()
		return err
	}
	return nil
}

func details(st snapshot) []users.UserDetails {
	ids := slices.Sorted(maps.Keys(st.users))
	result := make([]users.UserDetails, 0, len(ids))
	for _, id := range ids {
		u := st.users[id]
		d := users.UserDetails{
			User:    u,
			Address: st.addresses[u.AddressID],
			Company: st.companies[u.CompanyID],
		}
		if u.CreditCardID != nil {
			if card, ok := st.cards[*u.CreditCardID]; ok {
				d.CreditCard = &card
			}
		}
		result = append(result, d)
	}
	return result
}

// writer enforces the same constraints as the SQL schema
type writer struct {
	state *snapshot
}

func (w *writer) next() int64 {
	w.state.nextID++
	return w.state.nextID
}

func (w *writer) WriteAddress(_ context.Context, a *users.Address) (int64, error) {
	id := w.next()
	row := *a
	row.ID = id
	w.state.addresses[id] = row
	return id, nil
}

func (w *writer) WriteCompany(_ context.Context, c *users.Company) (int64, error) {
	id := w.next()
	row := *c
	row.ID = id
	w.state.companies[id] = row
	return id, nil
}

func (w *writer) WriteCreditCard(_ context.Context, c *users.CreditCard) (int64, error) {
	id := w.next()
	row := *c
	row.ID = id
	w.state.cards[id] = row
	return id, nil
}

func (w *writer) WriteUser(_ context.Context, u *users.User) error {
	if _, exists := w.state.users[u.ID]; exists {
		return fmt.Errorf("duplicate key: user %d already exists", u.ID)
	}
	if _, ok := w.state.addresses[u.AddressID]; !ok {
		return fmt.Errorf("foreign key violation: address %d does not exist", u.AddressID)
	}
	if _, ok := w.state.companies[u.CompanyID]; !ok {
		return fmt.Errorf("foreign key violation: company %d does not exist", u.CompanyID)
	}
	if u.CreditCardID != nil {
		if _, ok := w.state.cards[*u.CreditCardID]; !ok {
			return fmt.Errorf("foreign key violation: credit card %d does not exist", *u.CreditCardID)
		}
		for _, other := range w.state.users {
			if other.CreditCardID != nil && *other.CreditCardID == *u.CreditCardID {
				return fmt.Errorf("duplicate key: credit card %d already linked to user %d", *u.CreditCardID, other.ID)
			}
		}
	}

	row := *u
	if u.CreditCardID != nil {
		id := *u.CreditCardID
		row.CreditCardID = &id
	}
	w.state.users[u.ID] = row
	return nil
}

type tx struct {
	store *Store
	done  bool
}

func (t *tx) Store() store.Store {
	return t.store
}

func (t *tx) Commit(_ context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already closed")
	}
	t.done = true
	if err := t.store.Commit(); err != nil {
		t.store.Rollback()
		return err
	}
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.Rollback()
	return nil
}
