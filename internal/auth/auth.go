package auth

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator validates a username/password pair. It reports only a
// boolean; account details stay behind the directory store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// PgAuthenticator checks credentials against the surveyor table.
type PgAuthenticator struct {
	db  *pgxpool.Pool
	log log.Logger
}

func NewPgAuthenticator(db *pgxpool.Pool) *PgAuthenticator {
	a := &PgAuthenticator{}
	a.db = db
	a.log = log.DefaultLogger
	a.log.Context = log.NewContext(nil).Str("module", "auth").Value()
	return a
}

func (a *PgAuthenticator) Authenticate(ctx context.Context, username, password string) (bool, error) {
	sqlStmt := `SELECT "password" FROM surveyor WHERE username = $1`
	row := a.db.QueryRow(ctx, sqlStmt, username)
	var hashpwd string
	err := row.Scan(&hashpwd)
	if err == pgx.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(hashpwd), []byte(password))
	if err != nil {
		a.log.Debug().Str("username", username).Msg("password mismatch")
		return false, nil
	}
	return true, nil
}
