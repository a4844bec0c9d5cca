package geofence

import (
	"fmt"
	"math"
	"sort"

	"city-audit/internal/logger"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// rtreego 不接受零宽矩形，退化的包围盒按此最小边长补齐
const minRectSide = 1e-9

// 索引矩形与查询矩形的相对外扩比例；rtreego 的相交判断不含边界，
// 外扩量随坐标量级放大，保证边界上的点仍能命中候选
const relSlack = 1e-9

// 文档注释：围栏注册表
// 背景：启动时一次性构建，后续只读；按 ID 查询指定城市，或在全部城市中查找包含某点的城市。
// 约束：regions 保持构建顺序，作为多城市重叠时的确定性优先级；R-Tree 只负责候选过滤。
type Registry struct {
	regions []*Region
	byID    map[int64]*Region
	index   *rtreego.Rtree
}

type indexed struct {
	region *Region
	rect   rtreego.Rect
}

func (s *indexed) Bounds() rtreego.Rect { return s.rect }

// 文档注释：由原始城市行构建注册表
// 约束：任一环编码非法或 ID 重复即整体失败，不返回部分结果。
func Build(raws []RawRegion) (*Registry, error) {
	reg := &Registry{
		regions: make([]*Region, 0, len(raws)),
		byID:    make(map[int64]*Region, len(raws)),
		index:   rtreego.NewTree(2, 25, 50),
	}
	for _, raw := range raws {
		if _, dup := reg.byID[raw.ID]; dup {
			return nil, fmt.Errorf("region %d (%s): %w", raw.ID, raw.Name, ErrDuplicateRegion)
		}
		ring, err := ParseRing(raw.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("region %d (%s): %w", raw.ID, raw.Name, err)
		}
		r := &Region{ID: raw.ID, Name: raw.Name, Ring: ring, bound: ring.Bound(), order: len(reg.regions)}
		rect, err := boundRect(r.bound)
		if err != nil {
			return nil, fmt.Errorf("region %d (%s): index: %w", raw.ID, raw.Name, err)
		}
		reg.regions = append(reg.regions, r)
		reg.byID[r.ID] = r
		reg.index.Insert(&indexed{region: r, rect: rect})
		logger.L().Debug("geofence_region_added", "id", r.ID, "name", r.Name, "vertices", len(ring))
	}
	return reg, nil
}

func boundRect(b orb.Bound) (rtreego.Rect, error) {
	sx := slack(b.Min[0], b.Max[0])
	sy := slack(b.Min[1], b.Max[1])
	w := b.Max[0] - b.Min[0] + 2*sx
	h := b.Max[1] - b.Min[1] + 2*sy
	if w < minRectSide {
		w = minRectSide
	}
	if h < minRectSide {
		h = minRectSide
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0] - sx, b.Min[1] - sy}, []float64{w, h})
}

// slack：按坐标绝对值的最大者计算外扩量，量级小于 1 时按 1 计
func slack(vs ...float64) float64 {
	m := 1.0
	for _, v := range vs {
		m = math.Max(m, math.Abs(v))
	}
	return m * relSlack
}

// Len 返回城市数量
func (r *Registry) Len() int { return len(r.regions) }

// Regions 按构建顺序返回全部城市
func (r *Registry) Regions() []*Region {
	out := make([]*Region, len(r.regions))
	copy(out, r.regions)
	return out
}

func (r *Registry) Lookup(id int64) (*Region, bool) {
	reg, ok := r.byID[id]
	return reg, ok
}

// Contains：判定点是否位于指定城市内；ID 不存在返回 ErrUnknownRegion
func (r *Registry) Contains(id int64, pt orb.Point) (bool, error) {
	reg, ok := r.byID[id]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownRegion, id)
	}
	return reg.Contains(pt), nil
}

// 文档注释：在全部城市中查找包含该点的城市
// 背景：点不在所属城市时用于定位实际所在城市。
// 约束：多个城市同时包含该点时返回构建顺序最靠前者；无命中返回 nil。
func (r *Registry) FindAnyContaining(pt orb.Point) *Region {
	q, err := rtreego.NewRect(
		rtreego.Point{pt[0] - slack(pt[0]), pt[1] - slack(pt[1])},
		[]float64{2 * slack(pt[0]), 2 * slack(pt[1])},
	)
	if err != nil {
		return nil
	}
	hits := r.index.SearchIntersect(q)
	if len(hits) == 0 {
		return nil
	}
	cands := make([]*Region, 0, len(hits))
	for _, h := range hits {
		cands = append(cands, h.(*indexed).region)
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].order < cands[j].order })
	for _, c := range cands {
		if c.Contains(pt) {
			return c
		}
	}
	return nil
}
