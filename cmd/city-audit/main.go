// 程序入口：一次性稽核活跃用户的位置指针是否位于其所属城市围栏内
package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"city-audit/internal/audit"
	"city-audit/internal/config"
	"city-audit/internal/geofence"
	"city-audit/internal/logger"
	"city-audit/internal/metrics"
	"city-audit/internal/migrate"
	"city-audit/internal/store"
	"city-audit/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

// 约束：稽核结果写标准输出，诊断日志写标准错误；到达输入末尾返回 0，其余致命错误返回 1
func run() int {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, driver, err := utils.OpenDB(cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		l.Error("db_open_error", "err", err)
		return 1
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "driver", driver, "err", err)
		return 1
	}
	l.Info("db_ping_ok", "driver", driver)
	if cfg.SchemaCheck {
		if err := migrate.CheckSchema(ctx, db, driver, store.Tables(driver)); err != nil {
			l.Error("schema_error", "err", err)
			return 1
		}
	}

	coll := metrics.NewCollector(nil)
	st := store.AttachDB(db, driver).WithQueries(cfg.RegionQuery, cfg.UserQuery)
	st.Observer = coll

	raws, err := st.LoadRegions(ctx)
	if err != nil {
		l.Error("region_load_error", "err", err)
		return 1
	}
	reg, err := geofence.Build(raws)
	if err != nil {
		l.Error("geofence_build_error", "err", err)
		return 1
	}
	coll.Regions.Set(float64(reg.Len()))
	l.Info("geofence_ready", "regions", reg.Len())

	bw := bufio.NewWriter(os.Stdout)
	out := audit.NewWriterSink(bw)
	eng := audit.New(reg, out, l)
	eng.Observer = coll
	eng.Workers = cfg.Workers

	start := time.Now()
	sum, runErr := eng.Run(ctx, st)
	flushErr := bw.Flush()
	coll.RunFinished(time.Since(start), runErr == nil)
	if err := coll.Push(cfg.PushgatewayURL, cfg.PushgatewayJob); err != nil {
		l.Warn("metrics_push_error", "url", cfg.PushgatewayURL, "err", err)
	}
	if runErr != nil {
		l.Error("audit_stream_error", "err", runErr)
		return 1
	}
	if err := out.Err(); err != nil {
		l.Error("output_write_error", "err", err)
		return 1
	}
	if flushErr != nil {
		l.Error("output_write_error", "err", flushErr)
		return 1
	}
	l.Info("audit_done",
		"users", sum.Users,
		"checked", sum.Checked,
		"points", sum.Points,
		"disabled_region", sum.DisabledRegion,
		"other_region", sum.OtherRegion,
		"outside", sum.Outside,
		"soft_errors", sum.SoftErrors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return 0
}
