package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Peeetk/shop-backend/account/password"
	"github.com/Peeetk/shop-backend/account/storage"
	"github.com/Peeetk/shop-backend/account/token"
	"github.com/Peeetk/shop-backend/account/users"
	"github.com/Peeetk/shop-backend/internal/allowlist"
	"github.com/Peeetk/shop-backend/internal/notifier"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotAuthorized      = errors.New("registration not permitted")
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUpstream           = errors.New("upstream unavailable")
)

const minPasswordLen = 6

type Service struct {
	storage         storage.AccountStorage
	allowlist       allowlist.Provider
	notifier        notifier.Notifier
	tokens          *token.Issuer
	cfg             Config
	upstreamTimeout time.Duration
	log             *logrus.Entry
}

func New(l *logrus.Logger, cfg Config, store storage.AccountStorage, allow allowlist.Provider, notify notifier.Notifier) (*Service, error) {
	sessionTTL, err := parseDuration(cfg.SessionTTL, 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("session_ttl: %w", err)
	}
	resetTTL, err := parseDuration(cfg.ResetTTL, 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("reset_ttl: %w", err)
	}
	upstreamTimeout, err := parseDuration(cfg.UpstreamTimeout, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("upstream_timeout: %w", err)
	}
	switch cfg.ResetMode {
	case ResetModeDirect, ResetModeToken:
	case "":
		cfg.ResetMode = ResetModeToken
	default:
		return nil, fmt.Errorf("unknown reset_mode %q", cfg.ResetMode)
	}
	if cfg.SigningKey == "" {
		return nil, errors.New("signing key is not set")
	}
	return &Service{
		storage:         store,
		allowlist:       allow,
		notifier:        notify,
		tokens:          token.NewIssuer(cfg.SigningKey, sessionTTL, resetTTL),
		cfg:             cfg,
		upstreamTimeout: upstreamTimeout,
		log:             l.WithFields(map[string]interface{}{"from": "account-service"}),
	}, nil
}

func (s *Service) ResetMode() string {
	return s.cfg.ResetMode
}

// Register creates an account for an email present on the customer
// ledger. Nothing is persisted unless every check passes.
func (s *Service) Register(ctx context.Context, name, email, pass string) (users.Public, error) {
	if email == "" || pass == "" || len(pass) < minPasswordLen {
		return users.Public{}, ErrInvalidInput
	}
	email = users.NormalizeEmail(email)

	permitted, err := s.permittedEmails(ctx)
	if err != nil {
		return users.Public{}, err
	}
	if !permitted.Contains(email) {
		return users.Public{}, ErrNotAuthorized
	}

	_, err = s.storage.FindByEmail(ctx, email)
	if err == nil {
		return users.Public{}, ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return users.Public{}, err
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return users.Public{}, err
	}
	account := users.Account{
		ID:             uuid.New(),
		Email:          email,
		Name:           name,
		CredentialHash: hash,
		CreatedAt:      time.Now(),
	}
	if err := s.storage.Insert(ctx, account); err != nil {
		return users.Public{}, err
	}

	// Welcome mail is best effort, registration already succeeded.
	subject, body := notifier.WelcomeMessage(name)
	if err := s.send(ctx, email, subject, body); err != nil {
		s.log.Warnf("welcome mail to %s: %v", email, err)
	}

	return account.Public(), nil
}

// Login verifies credentials and issues a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, pass string) (users.Public, string, error) {
	if email == "" || pass == "" {
		return users.Public{}, "", ErrInvalidCredentials
	}
	email = users.NormalizeEmail(email)

	account, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Public{}, "", ErrInvalidCredentials
		}
		return users.Public{}, "", err
	}
	if !password.Verify(pass, account.CredentialHash) {
		return users.Public{}, "", ErrInvalidCredentials
	}
	session, err := s.tokens.SignSession(account.Email, account.Name)
	if err != nil {
		return users.Public{}, "", err
	}
	return account.Public(), session, nil
}

// Me resolves a session token back to the public account identity.
func (s *Service) Me(ctx context.Context, sessionToken string) (users.Public, error) {
	claims, err := s.tokens.VerifySession(sessionToken)
	if err != nil {
		return users.Public{}, ErrInvalidToken
	}
	account, err := s.storage.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.Public{}, ErrNotFound
		}
		return users.Public{}, err
	}
	return account.Public(), nil
}

func (s *Service) ChangePassword(ctx context.Context, email, oldPass, newPass string) error {
	if len(newPass) < minPasswordLen {
		return ErrInvalidInput
	}
	email = users.NormalizeEmail(email)

	account, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !password.Verify(oldPass, account.CredentialHash) {
		return ErrInvalidCredentials
	}
	hash, err := password.Hash(newPass)
	if err != nil {
		return err
	}
	return s.storage.UpdateCredential(ctx, email, hash)
}

// ForgotPassword starts the reset flow configured for this deployment.
// The caller always gets the same acknowledgment whether or not the
// account exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return ErrInvalidInput
	}
	email = users.NormalizeEmail(email)

	_, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if s.cfg.ResetMode == ResetModeDirect {
		return s.resetDirect(ctx, email)
	}
	return s.resetWithToken(ctx, email)
}

func (s *Service) resetDirect(ctx context.Context, email string) error {
	temp, err := password.RandomTemporary()
	if err != nil {
		return err
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return err
	}
	if err := s.storage.UpdateCredential(ctx, email, hash); err != nil {
		return err
	}
	subject, body := notifier.TemporaryPasswordMessage(temp)
	return s.send(ctx, email, subject, body)
}

func (s *Service) resetWithToken(ctx context.Context, email string) error {
	reset, err := s.tokens.SignReset(email)
	if err != nil {
		return err
	}
	subject, body := notifier.ResetLinkMessage(s.cfg.ResetURL + "?token=" + reset)
	return s.send(ctx, email, subject, body)
}

// ResetPassword finishes the token-mode flow. Expired, forged and
// malformed tokens all fail the same way.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPass string) error {
	if len(newPass) < minPasswordLen {
		return ErrInvalidInput
	}
	email, err := s.tokens.VerifyReset(resetToken)
	if err != nil {
		return ErrInvalidToken
	}
	if _, err := s.storage.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	hash, err := password.Hash(newPass)
	if err != nil {
		return err
	}
	return s.storage.UpdateCredential(ctx, email, hash)
}

func (s *Service) DeleteAccount(ctx context.Context, email, pass string) error {
	email = users.NormalizeEmail(email)

	account, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !password.Verify(pass, account.CredentialHash) {
		return ErrInvalidCredentials
	}
	return s.storage.Delete(ctx, email)
}

func (s *Service) permittedEmails(ctx context.Context) (mapset.Set[string], error) {
	ctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	set, err := s.allowlist.ListActiveEmails(ctx)
	if err != nil {
		s.log.Errorf("allow-list fetch: %v", err)
		return nil, errors.Join(ErrUpstream, err)
	}
	return set, nil
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	if err := s.notifier.Send(ctx, to, subject, body); err != nil {
		s.log.Errorf("mail to %s: %v", to, err)
		return errors.Join(ErrUpstream, err)
	}
	return nil
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
