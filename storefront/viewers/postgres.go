package viewers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const sessionsTable = "viewer_sessions"

// statement builder with dollar placeholders
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var sessionColumns = []string{
	"session_id", "product_id", "user_agent", "ip_address", "joined_at", "last_seen", "is_active",
}

// postgres-backed store; the schema lives in internal/database/migrations
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *ViewerSession) error {
	query, args, err := psq.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			session.SessionID,
			session.ProductID,
			session.UserAgent,
			session.IPAddress,
			session.JoinedAt,
			session.LastSeen,
			session.IsActive,
		).ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting viewer session: %w", err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*ViewerSession, error) {
	query, args, err := psq.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	session, err := scanSession(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("querying viewer session: %w", err)
	}

	return session, nil
}

func (s *PostgresStore) Patch(ctx context.Context, sessionID string, patch Patch) error {
	if patch.IsEmpty() {
		return nil
	}

	qb := psq.Update(sessionsTable)

	if patch.LastSeen != nil {
		qb = qb.Set("last_seen", patch.LastSeen.UTC())
	}

	if patch.IsActive != nil {
		qb = qb.Set("is_active", *patch.IsActive)
	}

	query, args, err := qb.Where(sq.Eq{"session_id": sessionID}).ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating viewer session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	query, args, err := psq.Delete(sessionsTable).
		Where(sq.Eq{"session_id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting viewer session: %w", err)
	}

	return nil
}

func (s *PostgresStore) CountActive(ctx context.Context, productID string, since time.Time) (int, error) {
	query, args, err := psq.Select("COUNT(*)").
		From(sessionsTable).
		Where(sq.Eq{"product_id": productID, "is_active": true}).
		Where(sq.Gt{"last_seen": since.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting active viewers: %w", err)
	}

	return count, nil
}

func (s *PostgresStore) ListStale(ctx context.Context, q StaleQuery) ([]*ViewerSession, error) {
	qb := psq.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Lt{"last_seen": q.Before.UTC()})

	if q.ActiveOnly {
		qb = qb.Where(sq.Eq{"is_active": true})
	}

	qb = qb.OrderBy("last_seen ASC")

	if q.Limit > 0 {
		qb = qb.Limit(uint64(q.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building stale query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stale sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*ViewerSession

	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stale session: %w", err)
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stale sessions: %w", err)
	}

	return sessions, nil
}

func (s *PostgresStore) Stats(ctx context.Context, cutoff time.Time) (*Stats, error) {
	cutoff = cutoff.UTC()

	query, args, err := psq.Select().
		Column(sq.Expr("COUNT(*) FILTER (WHERE is_active AND last_seen > ?)", cutoff)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE is_active AND last_seen < ?)", cutoff)).
		Column("COUNT(*)").
		From(sessionsTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building stats query: %w", err)
	}

	var stats Stats
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.ActiveSessions,
		&stats.PendingInactive,
		&stats.TotalSessions,
	); err != nil {
		return nil, fmt.Errorf("querying session stats: %w", err)
	}

	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*ViewerSession, error) {
	var s ViewerSession

	if err := row.Scan(
		&s.SessionID,
		&s.ProductID,
		&s.UserAgent,
		&s.IPAddress,
		&s.JoinedAt,
		&s.LastSeen,
		&s.IsActive,
	); err != nil {
		return nil, err
	}

	s.JoinedAt = s.JoinedAt.UTC()
	s.LastSeen = s.LastSeen.UTC()

	return &s, nil
}
