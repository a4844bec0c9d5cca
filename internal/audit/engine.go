// 包 audit：用户位置指针与所属城市围栏的一致性稽核
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"city-audit/internal/geofence"
	"city-audit/internal/locs"
	"city-audit/internal/logger"

	"golang.org/x/sync/errgroup"
)

// UserSource：按顺序回调每个用户；fn 返回错误时应停止迭代并返回该错误
type UserSource interface {
	Each(ctx context.Context, fn func(User) error) error
}

// Users：内存中的用户列表
type Users []User

func (us Users) Each(ctx context.Context, fn func(User) error) error {
	for _, u := range us {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

// Observer：运行计数回调，metrics.Collector 满足该接口
type Observer interface {
	UserChecked()
	PointChecked(kind string)
	FindingReported(typ, kind string)
	SoftError(reason string)
}

type nopObserver struct{}

func (nopObserver) UserChecked()                   {}
func (nopObserver) PointChecked(string)            {}
func (nopObserver) FindingReported(string, string) {}
func (nopObserver) SoftError(string)               {}

// Summary：一次运行的汇总
type Summary struct {
	Users          int64 // 读取到的用户
	Checked        int64 // 所属城市有效且配置可解析的用户
	Points         int64 // 参与判定的位置指针
	DisabledRegion int64
	OtherRegion    int64
	Outside        int64
	SoftErrors     int64
}

type tally struct {
	users, checked, points, disabled, other, outside, soft atomic.Int64
}

func (t *tally) summary() Summary {
	return Summary{
		Users:          t.users.Load(),
		Checked:        t.checked.Load(),
		Points:         t.points.Load(),
		DisabledRegion: t.disabled.Load(),
		OtherRegion:    t.other.Load(),
		Outside:        t.outside.Load(),
		SoftErrors:     t.soft.Load(),
	}
}

// 文档注释：稽核引擎
// 背景：注册表构建完成后只读，每个用户的判定互不依赖，可按 Workers 并行。
// 约束：Workers <= 1 时串行，发现按输入顺序输出；并行时跨用户的输出顺序不保证。
type Engine struct {
	Registry *geofence.Registry
	Sink     Sink
	Log      *slog.Logger
	Observer Observer
	Workers  int
}

func New(reg *geofence.Registry, sink Sink, log *slog.Logger) *Engine {
	if log == nil {
		log = logger.L()
	}
	return &Engine{Registry: reg, Sink: sink, Log: log, Observer: nopObserver{}, Workers: 1}
}

// Run：消费全部用户；仅数据流本身的错误或 ctx 取消会返回错误
func (e *Engine) Run(ctx context.Context, src UserSource) (Summary, error) {
	var t tally
	if e.Workers <= 1 {
		err := src.Each(ctx, func(u User) error {
			e.check(u, &t)
			return nil
		})
		return t.summary(), err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	err := src.Each(gctx, func(u User) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			e.check(u, &t)
			return nil
		})
		return nil
	})
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return t.summary(), err
}

// Check：稽核单个用户，返回该用户的汇总
func (e *Engine) Check(u User) Summary {
	var t tally
	e.check(u, &t)
	return t.summary()
}

func (e *Engine) check(u User, t *tally) {
	t.users.Add(1)
	assigned, ok := e.Registry.Lookup(u.RegionID)
	if !ok {
		t.disabled.Add(1)
		e.report(Finding{
			Type:     FindingDisabledRegion,
			UserID:   u.UserID,
			Username: u.Username,
			Assigned: RegionRef{ID: u.RegionID},
		})
		return
	}
	doc, err := locs.Parse(u.Config)
	if err != nil {
		t.soft.Add(1)
		e.observer().SoftError("config_document")
		e.Log.Error("user_config_invalid", "user_id", u.UserID, "username", u.Username, "err", err)
		return
	}
	t.checked.Add(1)
	e.observer().UserChecked()
	for _, k := range locs.Kinds {
		e.checkPoint(u, assigned, doc, k, t)
	}
}

// 文档注释：单个位置指针的判定
// 约束：缺失静默跳过；只有一侧为空按 debug 记录后跳过；格式错误按 warn 记录后跳过；在所属城市内不输出；
// 否则在全部城市中查找实际所在城市（所属城市也参与查找，但已知不命中）。
func (e *Engine) checkPoint(u User, assigned *geofence.Region, doc *locs.Document, k locs.Kind, t *tally) {
	pt, err := doc.Point(k)
	if errors.Is(err, locs.ErrAbsent) {
		return
	}
	if errors.Is(err, locs.ErrIncomplete) {
		t.soft.Add(1)
		e.observer().SoftError("location_incomplete")
		e.Log.Debug("user_location_incomplete", "user_id", u.UserID, "username", u.Username, "kind", k.Label, "err", err)
		return
	}
	if err != nil {
		t.soft.Add(1)
		e.observer().SoftError("location_value")
		e.Log.Warn("user_location_invalid", "user_id", u.UserID, "username", u.Username, "kind", k.Label, "err", err)
		return
	}
	t.points.Add(1)
	e.observer().PointChecked(k.Label)
	inside, err := e.Registry.Contains(assigned.ID, pt)
	if err != nil {
		e.Log.Error("geofence_contains_error", "user_id", u.UserID, "region_id", assigned.ID, "err", err)
		return
	}
	if inside {
		return
	}
	f := Finding{
		UserID:   u.UserID,
		Username: u.Username,
		Kind:     k,
		Point:    pt,
		Assigned: RegionRef{ID: assigned.ID, Name: assigned.Name},
	}
	if actual := e.Registry.FindAnyContaining(pt); actual != nil {
		f.Type = FindingOtherRegion
		f.Actual = &RegionRef{ID: actual.ID, Name: actual.Name}
		t.other.Add(1)
	} else {
		f.Type = FindingOutside
		t.outside.Add(1)
	}
	e.report(f)
}

func (e *Engine) report(f Finding) {
	e.observer().FindingReported(f.Type.String(), f.Kind.Label)
	e.Sink.Report(f)
}

func (e *Engine) observer() Observer {
	if e.Observer == nil {
		return nopObserver{}
	}
	return e.Observer
}
