// Package auth gates the assistant behind an email and password kept in a
// local YAML users file.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidInput       = errors.New("invalid credentials")
)

var validate = validator.New()

// Credentials is what a user types at the login or sign-up prompt.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// Validate checks the email shape and the minimum password length.
func (c Credentials) Validate() error {
	return validate.Struct(c)
}

// Identity is an authenticated user.
type Identity struct {
	ID    uuid.UUID
	Email string
}

type user struct {
	ID           uuid.UUID `yaml:"id"`
	Email        string    `yaml:"email"`
	PasswordHash string    `yaml:"password_hash"`
	CreatedAt    time.Time `yaml:"created_at"`
}

type usersFile struct {
	Users []user `yaml:"users"`
}

// Store holds the registered users. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	path  string
	cost  int
	users map[string]user
}

// Open loads the users file at path. A missing file yields an empty store
// that Save will create.
func Open(path string) (*Store, error) {
	s := &Store{path: path, cost: bcrypt.DefaultCost, users: make(map[string]user)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users file %q: %w", path, err)
	}

	var file usersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding users file %q: %w", path, err)
	}
	for _, u := range file.Users {
		s.users[normalizeEmail(u.Email)] = u
	}
	return s, nil
}

// Authenticate checks email and password. Unknown users and wrong
// passwords both return ErrInvalidCredentials.
func (s *Store) Authenticate(email, password string) (*Identity, error) {
	s.mu.RLock()
	u, ok := s.users[normalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Identity{ID: u.ID, Email: u.Email}, nil
}

// Register adds a user. Call Save to persist it.
func (s *Store) Register(creds Credentials) (*Identity, error) {
	creds.Email = normalizeEmail(creds.Email)
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[creds.Email]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, creds.Email)
	}

	u := user{
		ID:           uuid.New(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.Email] = u

	return &Identity{ID: u.ID, Email: u.Email}, nil
}

// Save writes the users file with owner-only permissions.
func (s *Store) Save() error {
	s.mu.RLock()
	file := usersFile{Users: make([]user, 0, len(s.users))}
	for _, u := range s.users {
		file.Users = append(file.Users, u)
	}
	s.mu.RUnlock()

	sortUsers(file.Users)

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encoding users file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating users directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing users file %q: %w", s.path, err)
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortUsers(users []user) {
	slices.SortFunc(users, func(a, b user) int {
		return strings.Compare(a.Email, b.Email)
	})
}
