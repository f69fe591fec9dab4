package audit

import (
	"context"
	"fmt"
	"time"

	"identity-service/internal/db"

	"github.com/google/uuid"
)

// Actions recorded by the user-management endpoints.
const (
	ActionUserCreated  = "user_created"
	ActionRoleAssigned = "role_assigned"
)

// Entry is one successful admin operation.
type Entry struct {
	ID        uuid.UUID
	Action    string
	Actor     string // "sub" of the caller's token
	Subject   string // affected user id or username
	Detail    string
	CreatedAt time.Time
}

// Recorder persists audit entries. Recording is best-effort: callers log
// failures and carry on.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder discards every entry. It is used when no database is
// configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

type PostgresRecorder struct {
	db  *db.DB
	now func() time.Time
}

func NewPostgresRecorder(db *db.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db, now: time.Now}
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	if e.Action == "" || e.Subject == "" {
		return fmt.Errorf("audit: missing action or subject")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_audit (id, action, actor, subject, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		e.ID,
		e.Action,
		e.Actor,
		e.Subject,
		e.Detail,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}

	return nil
}
