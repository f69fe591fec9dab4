package app

import (
	"context"
	"database/sql"
	"fmt"

	"identity-service/internal/audit"
	"identity-service/internal/config"
	"identity-service/internal/db"
	"identity-service/internal/logger"

	_ "github.com/lib/pq"
)

type Infra struct {
	DB    *db.DB // nil when no DATABASE_DSN is configured
	Audit audit.Recorder
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.DatabaseDSN == "" {
		logger.Info("audit trail disabled", map[string]any{
			"reason": "DATABASE_DSN not set",
		})
		return &Infra{Audit: audit.NopRecorder{}}, nil
	}

	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.RunAuditMigration(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("database ready", nil)

	handle := &db.DB{DB: sqlDB}
	return &Infra{
		DB:    handle,
		Audit: audit.NewPostgresRecorder(handle),
	}, nil
}

func (i *Infra) Close() error {
	if i.DB == nil {
		return nil
	}
	return i.DB.Close()
}
