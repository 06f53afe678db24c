package notifier

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// Notifier delivers a transactional message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	Timeout  string `toml:"timeout"`
}

// SMTP sends plain-text mail through a generic SMTP/Gmail transport.
type SMTP struct {
	cfg     Config
	timeout time.Duration
	from    string
	log     *logrus.Entry
}

func NewSMTP(l *logrus.Logger, cfg Config) (*SMTP, error) {
	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, err
		}
	}
	return &SMTP{
		cfg:     cfg,
		timeout: timeout,
		from:    cfg.From,
		log:     l.WithFields(map[string]interface{}{"from": "notifier"}),
	}, nil
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return err
	}
	if err := m.To(to); err != nil {
		return err
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(
		s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(s.timeout),
	)
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Warnf("smtp close: %v", err)
		}
	}()
	return client.Send(m)
}

// Noop drops every message. Used in tests and local development.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string) error { return nil }
