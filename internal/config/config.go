// 包 config：从环境变量读取运行配置（.env 由入口通过 godotenv 预先加载）
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"city-audit/internal/utils"
)

// ErrMissingDatabase：既没有 DATABASE_URL 也没有 PG_HOST
var ErrMissingDatabase = errors.New("config: DATABASE_URL (or PG_HOST) is not set")

type Config struct {
	DatabaseURL  string
	MaxOpenConns int
	MaxIdleConns int

	Workers     int
	RegionQuery string
	UserQuery   string
	SchemaCheck bool

	PushgatewayURL string
	PushgatewayJob string
}

// 文档注释：加载配置
// 约束：数据源配置缺失为致命错误；数值项解析失败时忽略并保留默认值。
func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxOpenConns:   4,
		MaxIdleConns:   2,
		Workers:        1,
		RegionQuery:    os.Getenv("AUDIT_REGION_QUERY"),
		UserQuery:      os.Getenv("AUDIT_USER_QUERY"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		PushgatewayJob: os.Getenv("PUSHGATEWAY_JOB"),
	}
	if c.DatabaseURL == "" && os.Getenv("PG_HOST") != "" {
		c.DatabaseURL = utils.BuildPostgresDSNFromEnv()
	}
	if c.DatabaseURL == "" {
		return nil, ErrMissingDatabase
	}
	c.MaxOpenConns = envInt("DB_MAX_OPEN_CONNS", c.MaxOpenConns)
	c.MaxIdleConns = envInt("DB_MAX_IDLE_CONNS", c.MaxIdleConns)
	c.Workers = envInt("AUDIT_WORKERS", c.Workers)
	// 自定义查询时表结构未知，默认跳过表检查
	c.SchemaCheck = c.RegionQuery == "" && c.UserQuery == ""
	if v := os.Getenv("AUDIT_SCHEMA_CHECK"); v != "" {
		if b, e := strconv.ParseBool(v); e == nil {
			c.SchemaCheck = b
		}
	}
	return c, nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, e := strconv.Atoi(v); e == nil && n > 0 {
			return n
		}
	}
	return def
}
