package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for sqlx
	"github.com/jmoiron/sqlx"

	"github.com/veilbox/veil/internal/crypto"
)

// AuditEntry is one recorded operation. Detail is sensitive free text and is
// stored encrypted.
type AuditEntry struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Operation string    `db:"operation" json:"operation"`
	Subject   string    `db:"subject" json:"subject"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OpenAuditDB connects sqlx through the pgx database/sql driver.
func OpenAuditDB(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: audit db connect: %w", err)
	}
	return db, nil
}

// AuditRepo appends operation records.
//
// Expected schema:
//
//	CREATE TABLE audit_log (
//	    id         UUID PRIMARY KEY,
//	    operation  TEXT NOT NULL,
//	    subject    TEXT NOT NULL,
//	    detail     TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type AuditRepo struct {
	db    *sqlx.DB
	codec *crypto.Codec
}

func NewAuditRepo(db *sqlx.DB, codec *crypto.Codec) *AuditRepo {
	return &AuditRepo{db: db, codec: codec}
}

// Record appends one row. Detail passes through the masking codec; per the
// fail-open contract it is stored as-is when encryption is unconfigured.
func (r *AuditRepo) Record(ctx context.Context, operation, subject, detail string) error {
	entry := AuditEntry{
		ID:        uuid.New(),
		Operation: operation,
		Subject:   subject,
		Detail:    r.codec.Encrypt(detail),
		CreatedAt: time.Now().UTC(),
	}

	const query = `
		INSERT INTO audit_log (id, operation, subject, detail, created_at)
		VALUES (:id, :operation, :subject, :detail, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("store: record audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries with details decrypted for display.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	const query = `
		SELECT id, operation, subject, detail, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	var entries []AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("store: list audit entries: %w", err)
	}

	for i := range entries {
		entries[i].Detail = r.codec.Decrypt(entries[i].Detail)
	}
	return entries, nil
}
