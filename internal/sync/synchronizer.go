package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/stacklok/usersync/internal/otel"
	"github.com/stacklok/usersync/internal/sources"
	"github.com/stacklok/usersync/internal/store"
	"github.com/stacklok/usersync/internal/users"
)

// Outcome is the terminal state of a pass
type Outcome string

const (
	// OutcomeSuccess means new users were created
	OutcomeSuccess Outcome = "success"
	// OutcomeEmpty means there was nothing to create
	OutcomeEmpty Outcome = "empty"
	// OutcomeAborted means the pass failed and its writes must be discarded
	OutcomeAborted Outcome = "aborted"
)

// ErrInsufficientCreditCards is returned when the card batch is smaller than the number of new users
var ErrInsufficientCreditCards = errors.New("insufficient credit card data received from external API batch request")

// Failure reasons carried by Error
const (
	ReasonLookupFailed      = "LookupFailed"
	ReasonInsufficientCards = "InsufficientCreditCards"
	ReasonPersistFailed     = "PersistFailed"
)

// Error is a pass failure annotated with the step that failed
type Error struct {
	Err     error
	Message string
	Reason  string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result describes a finished pass
type Result struct {
	Outcome Outcome
	// Fetched is the number of records returned by the directory
	Fetched int
	// Created holds the new users in processing order
	Created []*users.User
}

// CreatedCount returns the number of users created by the pass
func (r *Result) CreatedCount() int {
	if r == nil {
		return 0
	}
	return len(r.Created)
}

// Synchronizer runs sync passes against a caller-provided store
//
//go:generate mockgen -destination=mocks/mock_synchronizer.go -package=mocks github.com/stacklok/usersync/internal/sync Synchronizer
type Synchronizer interface {
	// Run performs one pass. On error the caller must roll back the store's transaction.
	Run(ctx context.Context, st store.Store) (*Result, error)
}

type defaultSynchronizer struct {
	directory   sources.DirectoryClient
	creditCards sources.CreditCardClient
	tracer      trace.Tracer
}

// Option configures the default Synchronizer
type Option func(*defaultSynchronizer)

// WithTracer records a span per pass
func WithTracer(tracer trace.Tracer) Option {
	return func(s *defaultSynchronizer) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewSynchronizer creates the default Synchronizer
func NewSynchronizer(
	directory sources.DirectoryClient, creditCards sources.CreditCardClient, opts ...Option,
) Synchronizer {
	s := &defaultSynchronizer{
		directory:   directory,
		creditCards: creditCards,
		tracer:      noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *defaultSynchronizer) Run(ctx context.Context, st store.Store) (result *Result, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.Run")
	defer func() {
		otel.RecordError(span, err)
		if result != nil {
			span.SetAttributes(
				otel.AttrOutcome.String(string(result.Outcome)),
				otel.AttrCreatedCount.Int(result.CreatedCount()),
			)
		}
		span.End()
	}()

	slog.Info("Starting user data synchronization")

	fetched := s.directory.GetUsers(ctx)
	span.SetAttributes(otel.AttrFetchedCount.Int(len(fetched)))
	if len(fetched) == 0 {
		slog.Warn("No user data retrieved from the directory, nothing to synchronize")
		return &Result{Outcome: OutcomeEmpty}, nil
	}

	newUsers, err := s.selectNewUsers(ctx, st, fetched)
	if err != nil {
		return &Result{Outcome: OutcomeAborted, Fetched: len(fetched)}, err
	}
	span.SetAttributes(otel.AttrNewCount.Int(len(newUsers)))
	if len(newUsers) == 0 {
		slog.Info("No new users found in the directory")
		return &Result{Outcome: OutcomeEmpty, Fetched: len(fetched)}, nil
	}

	slog.Info("Identified new users, requesting credit cards in one batch", "count", len(newUsers))

	cards := s.creditCards.GetCreditCards(ctx, len(newUsers))
	span.SetAttributes(otel.AttrCardCount.Int(len(cards)))
	if len(cards) < len(newUsers) {
		slog.Error("Not enough credit cards for the new users, aborting for data consistency",
			"received", len(cards), "needed", len(newUsers))
		return &Result{Outcome: OutcomeAborted, Fetched: len(fetched)}, &Error{
			Err:     fmt.Errorf("received %d of %d: %w", len(cards), len(newUsers), ErrInsufficientCreditCards),
			Message: fmt.Sprintf("received only %d credit cards but need %d", len(cards), len(newUsers)),
			Reason:  ReasonInsufficientCards,
		}
	}

	created := make([]*users.User, 0, len(newUsers))
	for i, record := range newUsers {
		u, err := createUser(ctx, st, record, cards[i])
		if err != nil {
			slog.Error("Synchronization failed during database operations", "user_id", record.ID, "error", err)
			return &Result{Outcome: OutcomeAborted, Fetched: len(fetched)}, &Error{
				Err:     err,
				Message: fmt.Sprintf("failed to create user %d: %v", record.ID, err),
				Reason:  ReasonPersistFailed,
			}
		}
		created = append(created, u)
		slog.Debug("User created", "user_id", u.ID)
	}

	// the last user of the loop is still only staged
	if err := st.Flush(ctx); err != nil {
		slog.Error("Synchronization failed while flushing the created users", "error", err)
		return &Result{Outcome: OutcomeAborted, Fetched: len(fetched)}, &Error{
			Err:     err,
			Message: fmt.Sprintf("failed to flush created users: %v", err),
			Reason:  ReasonPersistFailed,
		}
	}

	slog.Info("Synchronization finished", "created", len(created))
	return &Result{Outcome: OutcomeSuccess, Fetched: len(fetched), Created: created}, nil
}

// selectNewUsers keeps the records the store does not know, in fetch order.
// A repeated id within one fetch is kept only once.
func (*defaultSynchronizer) selectNewUsers(
	ctx context.Context, st store.Store, fetched []users.DirectoryUser,
) ([]users.DirectoryUser, error) {
	seen := make(map[int64]struct{}, len(fetched))
	newUsers := make([]users.DirectoryUser, 0, len(fetched))

	for _, record := range fetched {
		if _, dup := seen[record.ID]; dup {
			slog.Warn("Duplicate user id in directory response, keeping the first occurrence", "user_id", record.ID)
			continue
		}
		seen[record.ID] = struct{}{}

		existing, err := st.GetUserByID(ctx, record.ID)
		if err != nil {
			return nil, &Error{
				Err:     err,
				Message: fmt.Sprintf("failed to look up user %d: %v", record.ID, err),
				Reason:  ReasonLookupFailed,
			}
		}
		if existing == nil {
			newUsers = append(newUsers, record)
		}
	}
	return newUsers, nil
}

// createUser stages the related entities, flushes them to obtain their ids and
// stages the user linked to them
func createUser(
	ctx context.Context, st store.Store, record users.DirectoryUser, card users.CreditCardRecord,
) (*users.User, error) {
	address, err := st.CreateAddress(record.Address)
	if err != nil {
		return nil, err
	}
	company, err := st.CreateCompany(record.Company)
	if err != nil {
		return nil, err
	}
	creditCard, err := st.CreateCreditCard(card)
	if err != nil {
		return nil, err
	}
	if err := st.Flush(ctx); err != nil {
		return nil, err
	}
	return st.CreateUser(record.Profile(), address.ID, company.ID, &creditCard.ID)
}
