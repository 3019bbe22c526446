// Package store persists users, their saved items and the sign-in log.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lightning66/GiftMe/models"
)

var (
	// ErrUserNotFound is returned when no user has the given email.
	ErrUserNotFound = errors.New("store: user not found")

	// ErrItemNotFound is returned when an item index is out of range.
	ErrItemNotFound = errors.New("store: item not found")
)

// Store is the persistence capability behind the account endpoints.
// Users are keyed by email; items are addressed by their list index.
type Store interface {
	// UpsertUser creates the user if the email is unknown. It reports
	// whether a new user was created; existing users are left untouched.
	UpsertUser(ctx context.Context, info models.UserInfo, provider string) (bool, error)

	GetUser(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, email string) error

	// AppendItem assigns the item an ID and AddedAt time and appends it.
	AppendItem(ctx context.Context, email string, item models.Item) (*models.Item, error)
	ListItems(ctx context.Context, email string) ([]models.Item, error)
	DeleteItem(ctx context.Context, email string, index int) error

	LogSignIn(ctx context.Context, ev models.SignInEvent) error

	Close(ctx context.Context) error
}

// newUser builds the initial record for a first sign-in.
func newUser(info models.UserInfo, provider string, now func() time.Time) models.User {
	return models.User{
		UserInfo:   info,
		Provider:   provider,
		Items:      []models.Item{},
		SignupDate: now().UTC(),
	}
}

// stampItem fills the server-assigned fields of an item.
func stampItem(item models.Item, now func() time.Time) models.Item {
	item.ID = uuid.NewString()
	item.AddedAt = now().UTC()
	return item
}
