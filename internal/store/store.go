// 包 store：PostgreSQL 数据访问层，保存线索并累计每日位置解析统计
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"geo-leads/internal/logger"

	_ "github.com/lib/pq"
)

// Store：持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// LeadRow：leads 表的一行；可选字段为空串或 nil 时写入 NULL
type LeadRow struct {
	Ref         string
	Address     string
	Name        string
	Email       string
	Condition   *int
	Timeline    string
	Description string
	SourceIP    string
	UserAgent   string
	GeoSlug     string
}

// InsertLead：写入一条线索，返回自增 id 与数据库时间
func (s *Store) InsertLead(ctx context.Context, r LeadRow) (int64, time.Time, error) {
	var (
		id int64
		at time.Time
	)
	var cond sql.NullInt16
	if r.Condition != nil {
		cond = sql.NullInt16{Int16: int16(*r.Condition), Valid: true}
	}
	err := s.db.QueryRowContext(ctx, `INSERT INTO leads
		(ref, address, name, email, property_condition, timeline, property_description, source_ip, user_agent, geo_slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		r.Ref, r.Address, nullStr(r.Name), nullStr(r.Email), cond, nullStr(r.Timeline),
		nullStr(r.Description), nullStr(r.SourceIP), nullStr(r.UserAgent), nullStr(r.GeoSlug),
	).Scan(&id, &at)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("insert lead: %w", err)
	}
	logger.L().Debug("db_lead_insert", "id", id)
	return id, at, nil
}

// IncrResolution：按 (当天, 来源, slug) 累加一次解析命中；slug 为空记为 "-"
func (s *Store) IncrResolution(ctx context.Context, source, slug string, supported bool) error {
	if slug == "" {
		slug = "-"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO geo_resolutions_daily(day, source, slug, supported, hits)
		VALUES (current_date, $1, $2, $3, 1)
		ON CONFLICT (day, source, slug) DO UPDATE SET hits = geo_resolutions_daily.hits + 1`,
		source, slug, supported)
	if err != nil {
		return fmt.Errorf("incr resolution: %w", err)
	}
	return nil
}

// DailyCount：解析统计的一行
type DailyCount struct {
	Day       time.Time `json:"day"`
	Source    string    `json:"source"`
	Slug      string    `json:"slug"`
	Supported bool      `json:"supported"`
	Hits      int64     `json:"hits"`
}

// RecentResolutions：最近 days 天的统计，按日期倒序、命中数倒序
func (s *Store) RecentResolutions(ctx context.Context, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := s.db.QueryContext(ctx, `SELECT day, source, slug, supported, hits FROM geo_resolutions_daily
		WHERE day > current_date - $1::int ORDER BY day DESC, hits DESC`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyCount
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Day, &d.Source, &d.Slug, &d.Supported, &d.Hits); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
