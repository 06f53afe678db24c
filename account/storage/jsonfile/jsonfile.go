package jsonfile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Peeetk/shop-backend/account/storage"
	"github.com/Peeetk/shop-backend/account/users"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Storage keeps all accounts in a single JSON file. Writes go through a
// temp file and an atomic rename so a crash leaves either the old file or
// the new one, never a torn one.
type Storage struct {
	path     string
	mu       sync.Mutex
	accounts map[string]record
	log      *logrus.Entry
}

type record struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	CredentialHash string    `json:"credential_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

var _ storage.AccountStorage = (*Storage)(nil)

func New(l *logrus.Logger, path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &Storage{
		path:     path,
		accounts: make(map[string]record),
		log:      l.WithFields(map[string]interface{}{"from": "jsonfile-storage"}),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		s.log.Info("account file does not exist yet, starting empty")
		return s, nil
	}
	if err := json.Unmarshal(data, &s.accounts); err != nil {
		return nil, err
	}
	s.log.Infof("loaded %d accounts", len(s.accounts))
	return s, nil
}

func (s *Storage) FindByEmail(_ context.Context, email string) (users.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.accounts[email]
	if !ok {
		return users.Account{}, sql.ErrNoRows
	}
	return toAccount(rec)
}

func (s *Storage) Insert(_ context.Context, account users.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Email]; ok {
		return errors.New("account exists: " + account.Email)
	}
	s.accounts[account.Email] = record{
		ID:             account.ID.String(),
		Email:          account.Email,
		Name:           account.Name,
		CredentialHash: account.CredentialHash,
		CreatedAt:      account.CreatedAt,
	}
	return s.persist()
}

func (s *Storage) UpdateCredential(_ context.Context, email string, credentialHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.accounts[email]
	if !ok {
		return sql.ErrNoRows
	}
	rec.CredentialHash = credentialHash
	s.accounts[email] = rec
	return s.persist()
}

func (s *Storage) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; !ok {
		return sql.ErrNoRows
	}
	delete(s.accounts, email)
	return s.persist()
}

func (s *Storage) Close() error {
	return nil
}

// persist is called with the mutex held.
func (s *Storage) persist() error {
	data, err := json.MarshalIndent(s.accounts, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func toAccount(rec record) (users.Account, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return users.Account{}, err
	}
	return users.Account{
		ID:             id,
		Email:          rec.Email,
		Name:           rec.Name,
		CredentialHash: rec.CredentialHash,
		CreatedAt:      rec.CreatedAt,
	}, nil
}
