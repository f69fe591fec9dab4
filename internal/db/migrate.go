package db

import (
	"context"
	"database/sql"
)

// DB wraps the shared connection pool.
type DB struct {
	*sql.DB
}

const auditMigration = `
CREATE TABLE IF NOT EXISTS admin_audit (
    id uuid PRIMARY KEY,
    action text NOT NULL,
    actor text NOT NULL,
    subject text NOT NULL,
    detail text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS admin_audit_subject_idx
ON admin_audit (subject);

CREATE INDEX IF NOT EXISTS admin_audit_created_at_idx
ON admin_audit (created_at);
`

// RunAuditMigration creates the audit schema. It is idempotent.
func RunAuditMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, auditMigration)
	return err
}
