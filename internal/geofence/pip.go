package geofence

import "github.com/paulmach/orb"

// 文档注释：点入环判定（Even-Odd，射线向 +x 方向）
// 约束：不区分顺/逆时针；显式闭合（首尾重复）与隐式闭合均可；
// 点恰在边或顶点上时结果由浮点比较决定，但对同一输入恒定。
func ringContains(ring orb.Ring, pt orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt[0], pt[1]
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		// (yi > y) != (yj > y) 保证 yj != yi，不会除零
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
