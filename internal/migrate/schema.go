package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"geo-leads/internal/logger"
)

// Statements：首次运行自动建表，全部使用 IF NOT EXISTS，可重复执行
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id BIGSERIAL PRIMARY KEY,
		ref UUID NOT NULL,
		address TEXT NOT NULL,
		name TEXT,
		email TEXT,
		property_condition SMALLINT,
		timeline TEXT,
		property_description TEXT,
		source_ip TEXT,
		user_agent TEXT,
		geo_slug TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_leads_ref ON leads(ref)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS geo_resolutions_daily (
		day DATE NOT NULL,
		source TEXT NOT NULL,
		slug TEXT NOT NULL,
		supported BOOLEAN NOT NULL,
		hits BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (day, source, slug)
	)`,
}

// EnsureSchema：按顺序执行建表语句，任一失败即返回
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema stmt %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
