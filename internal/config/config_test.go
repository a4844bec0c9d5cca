package config

import (
	"errors"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE", "AUDIT_WORKERS",
		"AUDIT_REGION_QUERY", "AUDIT_USER_QUERY", "AUDIT_SCHEMA_CHECK", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingDatabase(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); !errors.Is(err, ErrMissingDatabase) {
		t.Fatalf("err = %v, want ErrMissingDatabase", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "mysql://u:p@db/city")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Workers != 1 || !c.SchemaCheck || c.MaxOpenConns != 4 {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://x@y/z")
	t.Setenv("AUDIT_WORKERS", "6")
	t.Setenv("DB_MAX_OPEN_CONNS", "bogus")
	t.Setenv("AUDIT_USER_QUERY", "SELECT 1")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Workers != 6 {
		t.Errorf("workers = %d, want 6", c.Workers)
	}
	if c.MaxOpenConns != 4 {
		t.Errorf("max open = %d, want default 4", c.MaxOpenConns)
	}
	if c.SchemaCheck {
		t.Error("schema check should be off with a custom query")
	}
}

func TestLoadFromPGHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_DB", "geo")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgres://") || !strings.Contains(c.DatabaseURL, "db.internal:5432/geo") {
		t.Errorf("url = %q", c.DatabaseURL)
	}
}
