package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Peeetk/shop-backend/account/gen/model"
	"github.com/Peeetk/shop-backend/account/gen/table"
	"github.com/Peeetk/shop-backend/account/storage"
	"github.com/Peeetk/shop-backend/account/users"
	sqlite3 "github.com/Peeetk/shop-backend/internal/migrate"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.AccountStorage = (*Storage)(nil)

func New(l *logrus.Logger, fileName string) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "account-storage",
	})
	db, err := sql.Open("sqlite3", buildSource(fileName))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	err = sqlite3.UpAccountsDB(db)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}
	log.Info("account storage connected")
	return &Storage{
		db:  db,
		log: log,
	}, nil
}

func (s *Storage) FindByEmail(ctx context.Context, email string) (users.Account, error) {
	var dbAccount model.Accounts
	err := table.Accounts.
		SELECT(table.Accounts.AllColumns).
		FROM(table.Accounts).
		WHERE(table.Accounts.Email.EQ(sqlite.String(email))).
		QueryContext(ctx, s.db, &dbAccount)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.Account{}, sql.ErrNoRows
		}
		return users.Account{}, err
	}
	return convertAccountToModel(dbAccount)
}

func (s *Storage) Insert(ctx context.Context, account users.Account) error {
	dbAccount := model.Accounts{
		ID:             account.ID.String(),
		Email:          account.Email,
		CredentialHash: account.CredentialHash,
		CreatedAt:      account.CreatedAt,
	}
	if account.Name != "" {
		name := account.Name
		dbAccount.Name = &name
	}
	_, err := table.Accounts.INSERT(table.Accounts.AllColumns).MODEL(dbAccount).ExecContext(ctx, s.db)
	return err
}

func (s *Storage) UpdateCredential(ctx context.Context, email string, credentialHash string) error {
	res, err := table.Accounts.
		UPDATE(table.Accounts.CredentialHash).
		SET(sqlite.String(credentialHash)).
		WHERE(table.Accounts.Email.EQ(sqlite.String(email))).
		ExecContext(ctx, s.db)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Storage) Delete(ctx context.Context, email string) error {
	res, err := table.Accounts.
		DELETE().
		WHERE(table.Accounts.Email.EQ(sqlite.String(email))).
		ExecContext(ctx, s.db)
	if err != nil {
		return err
	}
	return checkAffected(res)
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

func convertAccountToModel(account model.Accounts) (users.Account, error) {
	id, err := uuid.Parse(account.ID)
	if err != nil {
		return users.Account{}, err
	}
	a := users.Account{
		ID:             id,
		Email:          account.Email,
		CredentialHash: account.CredentialHash,
		CreatedAt:      account.CreatedAt.In(time.UTC),
	}
	if account.Name != nil {
		a.Name = *account.Name
	}
	return a, nil
}

func buildSource(fileName string) string {
	return "file:" + fileName + "?cache=shared"
}
