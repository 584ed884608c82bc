// Package servicetest provides in-memory fakes for the stores the auth flow
// depends on, shared by the service and http test suites.
package servicetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/session"
)

// FakeUsers is an in-memory identity store keyed by username.
type FakeUsers struct {
	ByUsername map[string]model.User
	Emails     map[string]bool
	Audits     []model.AuditEntry
}

func NewFakeUsers() *FakeUsers {
	return &FakeUsers{ByUsername: make(map[string]model.User), Emails: make(map[string]bool)}
}

func (f *FakeUsers) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	user, ok := f.ByUsername[username]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *FakeUsers) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, user := range f.ByUsername {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (f *FakeUsers) EmailExists(_ context.Context, email string) bool { return f.Emails[email] }

func (f *FakeUsers) UsernameExists(_ context.Context, username string) bool {
	_, ok := f.ByUsername[username]
	return ok
}

func (f *FakeUsers) CreateUser(_ context.Context, user model.User) error {
	f.ByUsername[*user.Username] = user
	f.Emails[user.Email] = true
	return nil
}

func (f *FakeUsers) AppendAudit(_ context.Context, entry model.AuditEntry) error {
	f.Audits = append(f.Audits, entry)
	return nil
}

// MemSessions is an in-memory session store. TTLs are ignored; expiry
// behavior is the redis store's concern and covered by its own tests.
type MemSessions struct {
	Entries map[string]string
}

func NewMemSessions() *MemSessions { return &MemSessions{Entries: make(map[string]string)} }

func (m *MemSessions) Get(_ context.Context, key string) (string, error) {
	value, ok := m.Entries[key]
	if !ok {
		return "", session.ErrNotFound
	}
	return value, nil
}

func (m *MemSessions) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.Entries[key] = value
	return nil
}

func (m *MemSessions) Delete(_ context.Context, key string) error {
	delete(m.Entries, key)
	return nil
}

func (m *MemSessions) Enabled() bool { return true }
