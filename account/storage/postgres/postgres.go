package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/Peeetk/shop-backend/account/storage"
	"github.com/Peeetk/shop-backend/account/users"
	"github.com/Peeetk/shop-backend/gen/accounts/public/model"
	"github.com/Peeetk/shop-backend/gen/accounts/public/table"
	pgmigrate "github.com/Peeetk/shop-backend/internal/migrate"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	_ "github.com/jackc/pgx/v5/stdlib" // postgresql driver
	"github.com/sirupsen/logrus"
)

type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"dbname"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.AccountStorage = (*Storage)(nil)

func New(ctx context.Context, l *logrus.Logger, cfg Config) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "account-storage",
	})
	db, err := sql.Open("pgx", NewURLConnectionString(
		"postgres",
		cfg.Host+":"+strconv.Itoa(cfg.Port),
		cfg.DBName,
		cfg.Username,
		cfg.Password,
	))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err := pgmigrate.UpAccountsPostgres(db); err != nil {
		return nil, err
	}
	log.Info("account storage connected")
	return &Storage{
		db:  db,
		log: log,
	}, nil
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (users.Account, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.Account, error) {
		var dbAccount model.Accounts
		err := table.Accounts.
			SELECT(table.Accounts.AllColumns).
			FROM(table.Accounts).
			WHERE(table.Accounts.Email.EQ(postgres.String(email))).
			QueryContext(ctx, tx, &dbAccount)
		if err != nil {
			if errors.Is(err, qrm.ErrNoRows) {
				return users.Account{}, sql.ErrNoRows
			}
			return users.Account{}, err
		}
		return convertDBAccountToModel(dbAccount), nil
	})
}

func (s *Storage) Insert(ctx context.Context, account users.Account) error {
	return inTxSimple(ctx, s.db, func(tx *sql.Tx) error {
		dbAccount := model.Accounts{
			ID:             account.ID,
			Email:          account.Email,
			CredentialHash: account.CredentialHash,
			CreatedAt:      account.CreatedAt,
		}
		if account.Name != "" {
			name := account.Name
			dbAccount.Name = &name
		}
		_, err := table.Accounts.INSERT(table.Accounts.AllColumns).MODEL(dbAccount).ExecContext(ctx, tx)
		return err
	})
}

func (s *Storage) UpdateCredential(ctx context.Context, email string, credentialHash string) error {
	return inTxSimple(ctx, s.db, func(tx *sql.Tx) error {
		res, err := table.Accounts.
			UPDATE(table.Accounts.CredentialHash).
			SET(postgres.String(credentialHash)).
			WHERE(table.Accounts.Email.EQ(postgres.String(email))).
			ExecContext(ctx, tx)
		if err != nil {
			return err
		}
		return checkAffected(res)
	})
}

func (s *Storage) Delete(ctx context.Context, email string) error {
	return inTxSimple(ctx, s.db, func(tx *sql.Tx) error {
		res, err := table.Accounts.
			DELETE().
			WHERE(table.Accounts.Email.EQ(postgres.String(email))).
			ExecContext(ctx, tx)
		if err != nil {
			return err
		}
		return checkAffected(res)
	})
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func convertDBAccountToModel(account model.Accounts) users.Account {
	a := users.Account{
		ID:             account.ID,
		Email:          account.Email,
		CredentialHash: account.CredentialHash,
		CreatedAt:      account.CreatedAt.In(time.UTC),
	}
	if account.Name != nil {
		a.Name = *account.Name
	}
	return a
}

func inTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	value, err := fn(tx)
	if err != nil {
		return zero, errors.Join(err, tx.Rollback())
	}
	return value, tx.Commit()
}

func inTxSimple(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	_, err := inTx(ctx, db, func(tx *sql.Tx) (struct{}, error) { return struct{}{}, fn(tx) })
	return err
}

func NewURLConnectionString(protocol, host, dbName, username, password string) string {
	v := make(url.Values)
	u := url.URL{
		Scheme:   protocol,
		Host:     host,
		Path:     dbName,
		User:     url.UserPassword(username, password),
		RawQuery: v.Encode(),
	}
	return u.String()
}
