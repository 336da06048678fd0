package utils

import (
	"database/sql"

	"geo-leads/internal/config"

	_ "github.com/lib/pq"
)

// OpenPostgres：按配置打开连接池；sql.Open 不建立连接，由调用方 Ping 确认可用
func OpenPostgres(c config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.PostgresDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(c.PGMaxOpen)
	db.SetMaxIdleConns(c.PGMaxIdle)
	return db, nil
}
