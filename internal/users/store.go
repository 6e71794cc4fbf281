// Package users remembers which kindle address each user delivers to.
package users

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/chrono"
	"bookbridge/internal/components/telemetry"
	"bookbridge/internal/users/db"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	report_store_get = "store.get"
	report_store_set = "store.set"
)

var ErrInvalidEmail = errors.New("users: invalid email address")

type User struct {
	Id          string
	KindleEmail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Store struct {
	db   *sql.DB
	time chrono.TimeAPI
	tel  telemetry.API
}

func NewStore(database *sql.DB, clock chrono.TimeAPI, tel telemetry.API) Store {
	assert.NotNil(database)
	assert.NotNil(tel)
	if clock == nil {
		clock = chrono.NewStandardTime()
	}
	return Store{
		db:   database,
		time: clock,
		tel:  telemetry.NewScopedAPI("users", tel),
	}
}

// Migrate creates the tables the store needs if they do not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	if err != nil {
		return fmt.Errorf("users: migrate: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.Trim(strings.ToLower(email), " \t\n")
}

func (s Store) User(ctx context.Context, userId string) (User, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		"select kindle_email, created_at, updated_at from kindle_user where user_id = ?",
		userId,
	)

	var email string
	var createdAt, updatedAt int64
	err := row.Scan(&email, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_store_get, err, userId)
		return User{}, false, fmt.Errorf("users: get %s: %w", userId, err)
	}

	return User{
		Id:          userId,
		KindleEmail: email,
		CreatedAt:   time.Unix(createdAt, 0),
		UpdatedAt:   time.Unix(updatedAt, 0),
	}, true, nil
}

// KindleEmail returns the address a user delivers to, false means the user
// never set one.
func (s Store) KindleEmail(ctx context.Context, userId string) (string, bool, error) {
	user, ok, err := s.User(ctx, userId)
	if err != nil || !ok {
		return "", ok, err
	}
	return user.KindleEmail, true, nil
}

// SetKindleEmail creates the user or replaces their address.
func (s Store) SetKindleEmail(ctx context.Context, userId, email string) error {
	email = normalizeEmail(email)
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	now := s.time.Now().Unix()
	_, err := s.db.ExecContext(
		ctx,
		`insert into kindle_user (user_id, kindle_email, created_at, updated_at)
values (?, ?, ?, ?)
on conflict (user_id) do update set
    kindle_email = excluded.kindle_email,
    updated_at = excluded.updated_at`,
		userId, email, now, now,
	)
	if err != nil {
		s.tel.ReportBroken(report_store_set, err, userId)
		return fmt.Errorf("users: set %s: %w", userId, err)
	}
	return nil
}
