package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/storage"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelFatal, logging.FormatText)
}

// fakeOperationStore is an in-memory OperationStore for service tests
type fakeOperationStore struct {
	operations map[string]*models.Operation
	failWith   error
}

func newFakeOperationStore() *fakeOperationStore {
	return &fakeOperationStore{operations: make(map[string]*models.Operation)}
}

func (f *fakeOperationStore) Create(ctx context.Context, op *models.Operation) error {
	if f.failWith != nil {
		return f.failWith
	}
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	now := time.Now()
	op.CreatedAt = now
	op.UpdatedAt = now
	stored := *op
	f.operations[op.ID] = &stored
	return nil
}

func (f *fakeOperationStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Operation, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []*models.Operation
	for _, op := range f.operations {
		if op.UserID == ownerID {
			copied := *op
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (f *fakeOperationStore) ListByOwnerBetween(ctx context.Context, ownerID string, start, end models.Date) ([]*models.Operation, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []*models.Operation
	for _, op := range f.operations {
		if op.UserID != ownerID {
			continue
		}
		if op.Date.Before(start.Time) || op.Date.After(end.Time) {
			continue
		}
		copied := *op
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (f *fakeOperationStore) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Operation, error) {
	op, ok := f.operations[id]
	if !ok || op.UserID != ownerID {
		return nil, storage.ErrNotFound
	}
	copied := *op
	return &copied, nil
}

func (f *fakeOperationStore) Update(ctx context.Context, op *models.Operation) (*models.Operation, error) {
	existing, ok := f.operations[op.ID]
	if !ok || existing.UserID != op.UserID {
		return nil, storage.ErrNotFound
	}
	updated := *op
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	f.operations[op.ID] = &updated
	copied := updated
	return &copied, nil
}

func (f *fakeOperationStore) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	op, ok := f.operations[id]
	if !ok || op.UserID != ownerID {
		return storage.ErrNotFound
	}
	delete(f.operations, id)
	return nil
}

func (f *fakeOperationStore) count() int { return len(f.operations) }

// fakeUserStore is an in-memory UserStore for service tests
type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return storage.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id string, name *string, birthDate *models.Date, phone *string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	user.Name = name
	user.BirthDate = birthDate
	user.Phone = phone
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

// fakeMailer records sent mail instead of dialing SMTP
type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// fakeQuoteSource returns fixed prices and zero placeholders for the rest
type fakeQuoteSource struct {
	prices map[string]float64
	calls  int
}

func (f *fakeQuoteSource) GetQuotes(ctx context.Context, symbols []string) []models.Quote {
	f.calls++
	quotes := make([]models.Quote, 0, len(symbols))
	for _, s := range symbols {
		quotes = append(quotes, models.Quote{Symbol: s, Price: f.prices[s]})
	}
	return quotes
}

func mustDate(t *testing.T, value string) models.Date {
	t.Helper()
	d, err := models.ParseDate(value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return d
}
