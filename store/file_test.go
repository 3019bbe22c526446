package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lightning66/GiftMe/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = models.UserInfo{ID: "sub-1", Email: "alice@example.com", Name: "Alice", Picture: "https://img.example.com/a.png"}

func openTestStore(t *testing.T) (*FileStore, string, string) {
	t.Helper()
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	logPath := filepath.Join(dir, "signin_logs.json")

	s, err := OpenFile(usersPath, logPath)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, usersPath, logPath
}

func TestOpenFile_CreatesFiles(t *testing.T) {
	_, usersPath, logPath := openTestStore(t)

	data, err := os.ReadFile(usersPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = os.ReadFile(logPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestOpenFile_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenFile(path, "")
	assert.Error(t, err)
}

func TestFileStore_UpsertUser(t *testing.T) {
	ctx := context.Background()
	s, usersPath, _ := openTestStore(t)

	created, err := s.UpsertUser(ctx, alice, "google")
	require.NoError(t, err)
	assert.True(t, created)

	renamed := alice
	renamed.Name = "Someone Else"
	created, err = s.UpsertUser(ctx, renamed, "google")
	require.NoError(t, err)
	assert.False(t, created, "second sign-in must not create a user")

	u, err := s.GetUser(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name, "existing user must be left untouched")
	assert.Equal(t, "google", u.Provider)
	assert.Empty(t, u.Items)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), u.SignupDate)

	// The file survives a reopen.
	reopened, err := OpenFile(usersPath, "")
	require.NoError(t, err)
	u, err = reopened.GetUser(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
}

func TestFileStore_Items(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTestStore(t)

	_, err := s.AppendItem(ctx, alice.Email, models.Item{Title: "orphan"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.UpsertUser(ctx, alice, "google")
	require.NoError(t, err)

	for _, title := range []string{"Lamp", "Mirror", "Vase"} {
		item, err := s.AppendItem(ctx, alice.Email, models.Item{Title: title, Price: "$10.00"})
		require.NoError(t, err)
		assert.NotEmpty(t, item.ID)
		assert.False(t, item.AddedAt.IsZero())
	}

	items, err := s.ListItems(ctx, alice.Email)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.NotEqual(t, items[0].ID, items[1].ID)

	require.NoError(t, s.DeleteItem(ctx, alice.Email, 1))
	items, err = s.ListItems(ctx, alice.Email)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lamp", items[0].Title)
	assert.Equal(t, "Vase", items[1].Title)

	assert.ErrorIs(t, s.DeleteItem(ctx, alice.Email, 2), ErrItemNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, alice.Email, -1), ErrItemNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, "bob@example.com", 0), ErrUserNotFound)
}

func TestFileStore_ListItemsIsACopy(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTestStore(t)
	_, err := s.UpsertUser(ctx, alice, "google")
	require.NoError(t, err)
	_, err = s.AppendItem(ctx, alice.Email, models.Item{Title: "Lamp"})
	require.NoError(t, err)

	items, err := s.ListItems(ctx, alice.Email)
	require.NoError(t, err)
	items[0].Title = "changed"

	items, err = s.ListItems(ctx, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", items[0].Title)
}

func TestFileStore_DeleteUser(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTestStore(t)
	_, err := s.UpsertUser(ctx, alice, "google")
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, alice.Email))
	_, err = s.GetUser(ctx, alice.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, alice.Email), ErrUserNotFound)
}

func TestFileStore_LogSignIn(t *testing.T) {
	ctx := context.Background()
	s, _, logPath := openTestStore(t)

	ts := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, s.LogSignIn(ctx, models.SignInEvent{Email: alice.Email, Action: "sign_in", Timestamp: ts}))
	require.NoError(t, s.LogSignIn(ctx, models.SignInEvent{Email: alice.Email, Action: "sign_in", Timestamp: ts}))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	var events []models.SignInEvent
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "sign_in", events[0].Action)
	assert.True(t, ts.Equal(events[1].Timestamp))
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s, _, _ := openTestStore(t)
	_, err := s.UpsertUser(ctx, alice, "google")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AppendItem(ctx, alice.Email, models.Item{Title: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := s.ListItems(ctx, alice.Email)
	require.NoError(t, err)
	assert.Len(t, items, 20)
}
