package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lightning66/GiftMe/models"
)

// FileStore keeps all users in memory and rewrites a JSON file after every
// mutation. The sign-in log is a separate JSON array file. It is safe for
// concurrent use within one process.
type FileStore struct {
	mu        sync.RWMutex
	usersPath string
	logPath   string
	users     []models.User
	now       func() time.Time
}

// OpenFile loads usersPath (creating it if missing) and prepares logPath.
// A users file that exists but does not decode is an error, so that a
// corrupt file is never silently overwritten.
func OpenFile(usersPath, logPath string) (*FileStore, error) {
	s := &FileStore{usersPath: usersPath, logPath: logPath, now: time.Now}

	if err := readJSONArray(usersPath, &s.users); err != nil {
		return nil, fmt.Errorf("store: load users: %w", err)
	}
	if s.users == nil {
		s.users = []models.User{}
		if err := writeJSON(usersPath, s.users); err != nil {
			return nil, fmt.Errorf("store: init users file: %w", err)
		}
	}
	if logPath != "" {
		if _, err := os.Stat(logPath); errors.Is(err, fs.ErrNotExist) {
			if err := writeJSON(logPath, []models.SignInEvent{}); err != nil {
				return nil, fmt.Errorf("store: init sign-in log: %w", err)
			}
		}
	}
	return s, nil
}

func (s *FileStore) UpsertUser(_ context.Context, info models.UserInfo, provider string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(info.Email) >= 0 {
		return false, nil
	}
	s.users = append(s.users, newUser(info, provider, s.now))
	if err := s.persist(); err != nil {
		s.users = s.users[:len(s.users)-1]
		return false, err
	}
	return true, nil
}

func (s *FileStore) GetUser(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(email)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	u := s.users[i]
	u.Items = append([]models.Item{}, u.Items...)
	return &u, nil
}

func (s *FileStore) DeleteUser(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(email)
	if i < 0 {
		return ErrUserNotFound
	}
	prev := s.users
	s.users = append(append([]models.User{}, s.users[:i]...), s.users[i+1:]...)
	if err := s.persist(); err != nil {
		s.users = prev
		return err
	}
	return nil
}

func (s *FileStore) AppendItem(_ context.Context, email string, item models.Item) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(email)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	item = stampItem(item, s.now)
	prev := s.users[i].Items
	s.users[i].Items = append(append([]models.Item{}, prev...), item)
	if err := s.persist(); err != nil {
		s.users[i].Items = prev
		return nil, err
	}
	return &item, nil
}

func (s *FileStore) ListItems(_ context.Context, email string) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(email)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	return append([]models.Item{}, s.users[i].Items...), nil
}

func (s *FileStore) DeleteItem(_ context.Context, email string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(email)
	if i < 0 {
		return ErrUserNotFound
	}
	items := s.users[i].Items
	if index < 0 || index >= len(items) {
		return ErrItemNotFound
	}
	s.users[i].Items = append(append([]models.Item{}, items[:index]...), items[index+1:]...)
	if err := s.persist(); err != nil {
		s.users[i].Items = items
		return err
	}
	return nil
}

// LogSignIn appends ev to the sign-in log file. With no log path it is a
// no-op.
func (s *FileStore) LogSignIn(_ context.Context, ev models.SignInEvent) error {
	if s.logPath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.SignInEvent
	if err := readJSONArray(s.logPath, &events); err != nil {
		return fmt.Errorf("store: read sign-in log: %w", err)
	}
	events = append(events, ev)
	if err := writeJSON(s.logPath, events); err != nil {
		return fmt.Errorf("store: write sign-in log: %w", err)
	}
	return nil
}

func (s *FileStore) Close(context.Context) error { return nil }

func (s *FileStore) indexOf(email string) int {
	for i := range s.users {
		if s.users[i].Email == email {
			return i
		}
	}
	return -1
}

func (s *FileStore) persist() error {
	if err := writeJSON(s.usersPath, s.users); err != nil {
		return fmt.Errorf("store: write users: %w", err)
	}
	return nil
}

// readJSONArray decodes path into v. A missing or empty file leaves v as is.
func readJSONArray(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes v indented to a temp file and renames it over path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
