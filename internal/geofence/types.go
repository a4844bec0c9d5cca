package geofence

import (
	"errors"

	"github.com/paulmach/orb"
)

var (
	ErrUnknownRegion   = errors.New("geofence: unknown region")
	ErrDuplicateRegion = errors.New("geofence: duplicate region id")
)

// 文档注释：城市围栏（单一外环，无洞）
// 约束：Ring 至少包含 3 个不同顶点；首尾无需重复，按闭合环解释；构建后只读。
type Region struct {
	ID    int64
	Name  string
	Ring  orb.Ring
	bound orb.Bound
	order int
}

// RawRegion：数据源中的原始城市行，Coordinates 采用 "(x,y),(x,y),..." 编码
type RawRegion struct {
	ID          int64
	Name        string
	Coordinates string
}

// Bound 返回围栏外接矩形
func (r *Region) Bound() orb.Bound { return r.bound }

// Contains：先包围盒过滤，再做射线法判定
func (r *Region) Contains(pt orb.Point) bool {
	if !r.bound.Contains(pt) {
		return false
	}
	return ringContains(r.Ring, pt)
}
