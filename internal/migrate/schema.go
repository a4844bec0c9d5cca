package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"city-audit/internal/logger"
	"city-audit/internal/utils"
)

// 背景：运行前确认数据源包含所需表；缺表时稽核结果不可信，由调用方按致命错误处理
// 约束：只读检查，不创建或修改任何结构
func CheckSchema(ctx context.Context, db *sql.DB, driver string, tables []string) error {
	q := `SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
	if driver == utils.DriverMySQL {
		q = `SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
	}
	var missing []string
	for _, t := range tables {
		var n int64
		if err := db.QueryRowContext(ctx, q, t).Scan(&n); err != nil {
			return fmt.Errorf("schema check %s: %w", t, err)
		}
		logger.L().Debug("schema_table", "table", t, "found", n > 0)
		if n == 0 {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema check: missing tables %v", missing)
	}
	logger.L().Debug("schema_ok")
	return nil
}
