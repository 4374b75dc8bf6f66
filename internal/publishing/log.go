package publishing

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Publication records a review that reached Mastodon.
type Publication struct {
	ReviewID    string
	StatusID    string
	StatusURL   string
	PublishedAt time.Time
}

// Log appends publications.
type Log interface {
	Record(ctx context.Context, p *Publication) error
}

// DB is the subset of *pgxpool.Pool used by PostgresLog.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresLog writes publications to the review_publications table.
type PostgresLog struct {
	db DB
}

// NewPostgresLog creates a publication log backed by db.
func NewPostgresLog(db DB) *PostgresLog {
	return &PostgresLog{db: db}
}

// Schema creates the publication table.
const Schema = `
	CREATE TABLE IF NOT EXISTS review_publications (
		review_id    UUID PRIMARY KEY,
		status_id    TEXT NOT NULL,
		status_url   TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL
	)
`

// Migrate creates the table if it is missing.
func (l *PostgresLog) Migrate(ctx context.Context) error {
	_, err := l.db.Exec(ctx, Schema)

	return err
}

// Record inserts p. A redelivered event for an already recorded review is ignored.
func (l *PostgresLog) Record(ctx context.Context, p *Publication) error {
	query := `
		INSERT INTO review_publications (review_id, status_id, status_url, published_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (review_id) DO NOTHING
	`

	_, err := l.db.Exec(ctx, query, p.ReviewID, p.StatusID, p.StatusURL, p.PublishedAt)

	return err
}

// NoopLog only logs publications. Used when no database is configured.
type NoopLog struct {
	logger *zap.Logger
}

// NewNoopLog creates a new no-op publication log.
func NewNoopLog(logger *zap.Logger) *NoopLog {
	return &NoopLog{logger: logger}
}

func (n *NoopLog) Record(_ context.Context, p *Publication) error {
	n.logger.Info("review published",
		zap.String("review_id", p.ReviewID),
		zap.String("status_id", p.StatusID),
		zap.String("status_url", p.StatusURL),
		zap.Time("published_at", p.PublishedAt),
	)

	return nil
}
