package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/civicboard/docqa/internal/core/domain"
)

// AttachmentRepository reads the slice of the meetings mirror this
// service needs: attachment id to storage path and filename.
type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AttachmentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS attachments (
	id TEXT PRIMARY KEY,
	meeting_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachments_meeting_id ON attachments(meeting_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) Create(ctx context.Context, att *domain.Attachment) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO attachments (id, meeting_id, filename, mime_type, storage_path, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE
SET meeting_id = EXCLUDED.meeting_id,
    filename = EXCLUDED.filename,
    mime_type = EXCLUDED.mime_type,
    storage_path = EXCLUDED.storage_path
`,
		att.ID, att.MeetingID, att.Filename, att.MimeType, att.StoragePath, att.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, meeting_id, filename, mime_type, storage_path, created_at
FROM attachments
WHERE id = $1
`, id)

	var att domain.Attachment
	err := row.Scan(&att.ID, &att.MeetingID, &att.Filename, &att.MimeType, &att.StoragePath, &att.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrAttachmentNotFound, "get attachment", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan attachment: %w", err)
	}
	return &att, nil
}
