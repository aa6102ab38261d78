package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"

	"github.com/lib/pq"

	"membership-backend/internal/logger"
	"membership-backend/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db           *sql.DB
	q            querier
	applications repository.ApplicationRepository
	members      repository.MemberRepository
	auditLog     repository.AuditLogRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q querier) *Store {
	return &Store{
		db:           db,
		q:            q,
		applications: &applicationRepository{q: q},
		members:      &memberRepository{q: q},
		auditLog:     &auditLogRepository{q: q},
	}
}

func (s *Store) Applications() repository.ApplicationRepository { return s.applications }
func (s *Store) Members() repository.MemberRepository           { return s.members }
func (s *Store) AuditLog() repository.AuditLogRepository        { return s.auditLog }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.DatabaseResult("BEGIN", 0, err)
		return err
	}
	defer tx.Rollback()

	if err := fn(newStore(s.db, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// Migrate creates the workflow tables and indexes if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("MIGRATE", "schema.sql")
	_, err := db.ExecContext(ctx, schemaSQL)
	logger.DatabaseResult("MIGRATE", 0, err)
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}
