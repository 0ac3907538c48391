package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/usersync/internal/db/sqlc"
	"github.com/stacklok/usersync/internal/users"
)

// postgresStore stages entities and flushes them through sqlc on the
// connection or transaction it was created with
type postgresStore struct {
	queries *sqlc.Queries
	batch   Batch
}

// NewPostgresStore creates a Store over db, normally a pgx.Tx owned by the caller
func NewPostgresStore(db sqlc.DBTX) Store {
	return &postgresStore{queries: sqlc.New(db)}
}

func (s *postgresStore) CreateAddress(data users.AddressRecord) (*users.Address, error) {
	return s.batch.StageAddress(data)
}

func (s *postgresStore) CreateCompany(data users.CompanyRecord) (*users.Company, error) {
	return s.batch.StageCompany(data)
}

func (s *postgresStore) CreateCreditCard(data users.CreditCardRecord) (*users.CreditCard, error) {
	return s.batch.StageCreditCard(data)
}

func (s *postgresStore) CreateUser(
	profile users.Profile, addressID, companyID int64, creditCardID *int64,
) (*users.User, error) {
	return s.batch.StageUser(profile, addressID, companyID, creditCardID)
}

func (s *postgresStore) GetUserByID(ctx context.Context, id int64) (*users.User, error) {
	if u := s.batch.PendingUser(id); u != nil {
		return u, nil
	}

	row, err := s.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &users.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		Phone:        row.Phone,
		Website:      row.Website,
		AddressID:    row.AddressID,
		CompanyID:    row.CompanyID,
		CreditCardID: fromInt8(row.CreditCardID),
	}, nil
}

func (s *postgresStore) ListUsers(ctx context.Context) ([]users.UserDetails, error) {
	rows, err := s.queries.ListUserDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]users.UserDetails, 0, len(rows))
	for _, row := range rows {
		details := users.UserDetails{
			User: users.User{
				ID:           row.ID,
				Name:         row.Name,
				Username:     row.Username,
				Email:        row.Email,
				Phone:        row.Phone,
				Website:      row.Website,
				AddressID:    row.AddressID,
				CompanyID:    row.CompanyID,
				CreditCardID: fromInt8(row.CreditCardID),
			},
			Address: users.Address{
				ID:      row.AddressID,
				Street:  row.Street,
				Suite:   row.Suite,
				City:    row.City,
				Zipcode: row.Zipcode,
				GeoLat:  row.GeoLat,
				GeoLng:  row.GeoLng,
			},
			Company: users.Company{
				ID:          row.CompanyID,
				Name:        row.CompanyName,
				CatchPhrase: row.CatchPhrase,
				BS:          row.Bs,
			},
		}
		if row.CreditCardID.Valid {
			details.CreditCard = &users.CreditCard{
				ID:         row.CreditCardID.Int64,
				Type:       row.CardType.String,
				Number:     row.CardNumber.String,
				Expiration: row.CardExpiration.String,
				Owner:      row.CardOwner.String,
			}
		}
		result = append(result, details)
	}
	return result, nil
}

func (s *postgresStore) Flush(ctx context.Context) error {
	if s.batch.Len() == 0 {
		return nil
	}
	slog.Debug("Flushing staged entities", "count", s.batch.Len())
	return s.batch.Flush(ctx, sqlcWriter{queries: s.queries})
}

// sqlcWriter adapts the generated queries to BatchWriter
type sqlcWriter struct {
	queries *sqlc.Queries
}

func (w sqlcWriter) WriteAddress(ctx context.Context, a *users.Address) (int64, error) {
	return w.queries.InsertAddress(ctx, sqlc.InsertAddressParams{
		Street:  a.Street,
		Suite:   a.Suite,
		City:    a.City,
		Zipcode: a.Zipcode,
		GeoLat:  a.GeoLat,
		GeoLng:  a.GeoLng,
	})
}

func (w sqlcWriter) WriteCompany(ctx context.Context, c *users.Company) (int64, error) {
	return w.queries.InsertCompany(ctx, sqlc.InsertCompanyParams{
		Name:        c.Name,
		CatchPhrase: c.CatchPhrase,
		Bs:          c.BS,
	})
}

func (w sqlcWriter) WriteCreditCard(ctx context.Context, c *users.CreditCard) (int64, error) {
	return w.queries.InsertCreditCard(ctx, sqlc.InsertCreditCardParams{
		Type:       c.Type,
		Number:     c.Number,
		Expiration: c.Expiration,
		Owner:      c.Owner,
	})
}

func (w sqlcWriter) WriteUser(ctx context.Context, u *users.User) error {
	return w.queries.InsertUser(ctx, sqlc.InsertUserParams{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		Website:      u.Website,
		AddressID:    u.AddressID,
		CompanyID:    u.CompanyID,
		CreditCardID: toInt8(u.CreditCardID),
	})
}

func toInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func fromInt8(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

// poolBeginner opens read-committed transactions on a pgx pool
type poolBeginner struct {
	pool *pgxpool.Pool
}

// NewPostgresTxBeginner returns a TxBeginner whose transactions carry a Postgres store
func NewPostgresTxBeginner(pool *pgxpool.Pool) TxBeginner {
	return &poolBeginner{pool: pool}
}

func (b *poolBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgxTx{tx: tx, store: NewPostgresStore(tx)}, nil
}

type pgxTx struct {
	tx    pgx.Tx
	store Store
}

func (t *pgxTx) Store() Store {
	return t.store
}

// Commit flushes whatever is still staged, then commits
func (t *pgxTx) Commit(ctx context.Context) error {
	if err := t.store.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush staged changes: %w", err)
	}
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
