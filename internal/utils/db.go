package utils

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// BuildPostgresDSNFromEnv：由 PG_* 环境变量拼接 DSN
func BuildPostgresDSNFromEnv() string {
	host := os.Getenv("PG_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("PG_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("PG_USER")
	if user == "" {
		user = "postgres"
	}
	pass := os.Getenv("PG_PASSWORD")
	db := os.Getenv("PG_DB")
	if db == "" {
		db = "cityaudit"
	}
	ssl := os.Getenv("PG_SSLMODE")
	if ssl == "" {
		ssl = "disable"
	}
	u := &url.URL{Scheme: "postgres", Host: host + ":" + port, Path: "/" + db, RawQuery: "sslmode=" + ssl}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// 文档注释：根据连接串选择驱动
// 约束：mysql:// 转换为 go-sql-driver 的 DSN；postgres:// 、postgresql:// 以及 key=value 形式交给 lib/pq。
func ResolveDSN(raw string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(raw, "mysql://"):
		dsn, err = mysqlURLToDSN(raw)
		return DriverMySQL, dsn, err
	case strings.HasPrefix(raw, "postgresql+psycopg2://"):
		return DriverPostgres, "postgres://" + strings.TrimPrefix(raw, "postgresql+psycopg2://"), nil
	default:
		return DriverPostgres, raw, nil
	}
}

func mysqlURLToDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL URL: %w", err)
	}
	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = u.Hostname() + ":3306"
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	for k, vs := range u.Query() {
		if len(vs) == 0 {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params[k] = vs[0]
	}
	return cfg.FormatDSN(), nil
}

// OpenDB：打开连接池并返回驱动名；不做 Ping
func OpenDB(raw string, maxOpen, maxIdle int) (*sql.DB, string, error) {
	driver, dsn, err := ResolveDSN(raw)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, driver, nil
}
