package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// 文档注释：稽核运行指标
// 背景：批处理进程无常驻 /metrics 端点，运行结束时推送到 Pushgateway；未配置时仅在内存中累计。
// 约束：方法签名只使用字符串标签，避免依赖 audit 包的类型。
type Collector struct {
	gatherer prometheus.Gatherer

	UsersTotal       prometheus.Counter
	PointsTotal      *prometheus.CounterVec
	FindingsTotal    *prometheus.CounterVec
	SoftErrorsTotal  *prometheus.CounterVec
	Regions          prometheus.Gauge
	RunDurationSecs  prometheus.Gauge
	LastSuccessEpoch prometheus.Gauge
}

// NewCollector：在 reg 上注册指标；reg 为 nil 时使用独立的新注册表
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		gatherer: reg,
		UsersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "city_audit_users_total",
			Help: "Users whose locations were checked",
		}),
		PointsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "city_audit_points_total",
			Help: "Location pointers tested for containment",
		}, []string{"kind"}),
		FindingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "city_audit_findings_total",
			Help: "Reported findings by type and pointer kind",
		}, []string{"type", "kind"}),
		SoftErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "city_audit_soft_errors_total",
			Help: "Skipped rows, documents or pointers by reason",
		}, []string{"reason"}),
		Regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "city_audit_regions",
			Help: "Geofences loaded into the registry",
		}),
		RunDurationSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "city_audit_run_duration_seconds",
			Help: "Wall time of the last audit run",
		}),
		LastSuccessEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "city_audit_last_success_timestamp_seconds",
			Help: "Unix time of the last run that reached end of input",
		}),
	}
	reg.MustRegister(c.UsersTotal, c.PointsTotal, c.FindingsTotal, c.SoftErrorsTotal,
		c.Regions, c.RunDurationSecs, c.LastSuccessEpoch)
	return c
}

func (c *Collector) UserChecked() { c.UsersTotal.Inc() }

func (c *Collector) PointChecked(kind string) { c.PointsTotal.WithLabelValues(kind).Inc() }

func (c *Collector) FindingReported(typ, kind string) {
	c.FindingsTotal.WithLabelValues(typ, kind).Inc()
}

func (c *Collector) SoftError(reason string) { c.SoftErrorsTotal.WithLabelValues(reason).Inc() }

// RunFinished：记录耗时；ok 为 true 时更新最近成功时间
func (c *Collector) RunFinished(d time.Duration, ok bool) {
	c.RunDurationSecs.Set(d.Seconds())
	if ok {
		c.LastSuccessEpoch.SetToCurrentTime()
	}
}

// Push：推送到 Pushgateway；url 为空时不做任何事
func (c *Collector) Push(url, job string) error {
	if url == "" {
		return nil
	}
	if job == "" {
		job = "city_audit"
	}
	return push.New(url, job).Gatherer(c.gatherer).Push()
}
