package geofence

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ParseError：环编码无法解析；对围栏构建是致命错误
type ParseError struct {
	Index  int // 出错 token 的下标，-1 表示整体校验失败
	Token  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return "ring parse: " + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("ring parse: token %d %q: %v", e.Index, e.Token, e.Err)
	}
	return fmt.Sprintf("ring parse: token %d %q: %s", e.Index, e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// 分组括号在任意位置出现都会被整体移除
var groupingStripper = strings.NewReplacer("(", "", ")", "")

// 文档注释：解析围栏环编码
// 背景：坐标以逗号分隔，偶数下标为 x，奇数下标为其前一个 x 对应的 y。
// 约束：任一 token 非法即整体失败；x 缺少配对的 y 视为非法；不同顶点少于 3 个视为非法；
// 不校验闭合与方向。
func ParseRing(s string) (orb.Ring, error) {
	tokens := strings.Split(groupingStripper.Replace(s), ",")
	vals := make([]float64, len(tokens))
	for i, tok := range tokens {
		t := strings.TrimSpace(tok)
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Token: t, Err: err}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &ParseError{Index: i, Token: t, Reason: "non-finite coordinate"}
		}
		vals[i] = f
	}
	if len(vals)%2 != 0 {
		last := len(tokens) - 1
		return nil, &ParseError{Index: last, Token: strings.TrimSpace(tokens[last]), Reason: "x coordinate without y"}
	}
	ring := make(orb.Ring, 0, len(vals)/2)
	for i := 0; i < len(vals); i += 2 {
		ring = append(ring, orb.Point{vals[i], vals[i+1]})
	}
	if n := distinctVertices(ring); n < 3 {
		return nil, &ParseError{Index: -1, Reason: fmt.Sprintf("ring has %d distinct vertices, need at least 3", n)}
	}
	return ring, nil
}

func distinctVertices(ring orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
	}
	return len(seen)
}
