// 包 store：城市围栏与活跃用户两路数据流的读取
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"city-audit/internal/audit"
	"city-audit/internal/geofence"
	"city-audit/internal/logger"
	"city-audit/internal/utils"
)

// 过期时间以 Unix 秒存储，只读取未过期的城市；按 id 排序使注册表构建顺序稳定。
// MySQL 沿用既有库的表名与列名（city/scadenza、utenti、utenti_config_bot），Postgres 使用英文命名。
const (
	regionQueryPostgres = `SELECT id, name, coordinates FROM cities WHERE expires_at > EXTRACT(EPOCH FROM now()) ORDER BY id`
	regionQueryMySQL    = `SELECT id, name, coordinates FROM city WHERE scadenza > UNIX_TIMESTAMP() ORDER BY id`
	userQueryPostgres   = `SELECT u.user_id, u.username, u.city_id, b.config
        FROM users u
        INNER JOIN user_bot_configs b ON b.user_id = u.user_id
        WHERE u.status > 0
        ORDER BY u.user_id`
	userQueryMySQL = `SELECT u.user_id, u.username, u.city_id, b.config
        FROM utenti u
        INNER JOIN utenti_config_bot b ON b.user_id = u.user_id
        WHERE u.status > 0
        ORDER BY u.user_id`
)

// Tables：默认查询依赖的表
func Tables(driver string) []string {
	if driver == utils.DriverMySQL {
		return []string{"city", "utenti", "utenti_config_bot"}
	}
	return []string{"cities", "users", "user_bot_configs"}
}

// Store：数据库访问入口
type Store struct {
	db          *sql.DB
	regionQuery string
	userQuery   string
	log         *slog.Logger

	// Observer 接收被跳过的用户行计数，可为 nil
	Observer audit.Observer
}

func AttachDB(db *sql.DB, driver string) *Store {
	rq, uq := regionQueryPostgres, userQueryPostgres
	if driver == utils.DriverMySQL {
		rq, uq = regionQueryMySQL, userQueryMySQL
	}
	return &Store{db: db, regionQuery: rq, userQuery: uq, log: logger.L()}
}

// WithQueries：覆盖默认查询；空字符串保留默认值
// 约束：城市查询需返回 (id, name, coordinates)，用户查询需返回 (user_id, username, city_id, config)。
func (s *Store) WithQueries(region, user string) *Store {
	if region != "" {
		s.regionQuery = region
	}
	if user != "" {
		s.userQuery = user
	}
	return s
}

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：读取全部有效城市
// 约束：任何查询或字段错误都是致命的，不返回部分结果。
func (s *Store) LoadRegions(ctx context.Context) ([]geofence.RawRegion, error) {
	rows, err := s.db.QueryContext(ctx, s.regionQuery)
	if err != nil {
		return nil, fmt.Errorf("region query: %w", err)
	}
	defer rows.Close()
	var out []geofence.RawRegion
	for rows.Next() {
		var r geofence.RawRegion
		if err := rows.Scan(&r.ID, &r.Name, &r.Coordinates); err != nil {
			return nil, fmt.Errorf("region row %d: %w", len(out), err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("region rows: %w", err)
	}
	s.log.Debug("db_regions_loaded", "count", len(out))
	return out, nil
}

// 文档注释：逐行回调活跃用户，实现 audit.UserSource
// 约束：单行字段错误记录日志后跳过；查询失败、游标错误或 fn 返回错误时终止并返回。
func (s *Store) Each(ctx context.Context, fn func(audit.User) error) error {
	rows, err := s.db.QueryContext(ctx, s.userQuery)
	if err != nil {
		return fmt.Errorf("user query: %w", err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
		var (
			id, city   sql.NullInt64
			name, conf sql.NullString
		)
		if err := rows.Scan(&id, &name, &city, &conf); err != nil {
			s.skip("user_row_scan_error", n, err)
			continue
		}
		u, err := decodeUser(id, name, city, conf)
		if err != nil {
			s.skip("user_row_invalid", n, err)
			continue
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("user rows: %w", err)
	}
	return nil
}

func (s *Store) skip(event string, row int, err error) {
	s.log.Error(event, "row", row, "err", err)
	if s.Observer != nil {
		s.Observer.SoftError("user_row")
	}
}

var errNullColumn = errors.New("NULL column")

// decodeUser：NULL 的配置按空文档处理，由稽核阶段决定是否需要解析
func decodeUser(id sql.NullInt64, name sql.NullString, city sql.NullInt64, conf sql.NullString) (audit.User, error) {
	switch {
	case !id.Valid:
		return audit.User{}, fmt.Errorf("user_id: %w", errNullColumn)
	case !name.Valid:
		return audit.User{}, fmt.Errorf("user %d: username: %w", id.Int64, errNullColumn)
	case !city.Valid:
		return audit.User{}, fmt.Errorf("user %d: city_id: %w", id.Int64, errNullColumn)
	}
	return audit.User{UserID: id.Int64, Username: name.String, RegionID: city.Int64, Config: conf.String}, nil
}
