package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint rejects a write
	ErrConflict = errors.New("already exists")
)

type dialect int

const (
	sqliteDialect dialect = iota
	postgresDialect
)

// DB wraps a database connection
type DB struct {
	*sql.DB
	dialect dialect
}

// Open connects to dsn and brings the schema up to date. postgres:// and
// postgresql:// URLs use lib/pq; anything else is a SQLite path.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is empty")
	}

	driver, d := "sqlite3", sqliteDialect
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver, d = "postgres", postgresDialect
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if d == sqliteDialect {
		// SQLite allows one writer; a single connection also keeps :memory: databases shared
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	db := &DB{DB: conn, dialect: d}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	stmts := sqliteSchema
	if db.dialect == postgresDialect {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate schema")
		}
	}
	return nil
}

func (d dialect) bindType() int {
	if d == postgresDialect {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}

// rebind rewrites ? placeholders to $n for postgres
func (db *DB) rebind(query string) string {
	return sqlx.Rebind(db.dialect.bindType(), query)
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.rebind(query), args...)
}

// deleteOwned removes a row from table when it belongs to userID
func (db *DB) deleteOwned(ctx context.Context, table string, userID, id int64) error {
	res, err := db.exec(ctx, "DELETE FROM "+table+" WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return errors.Wrapf(err, "failed to delete from %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "failed to delete from %s", table)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
