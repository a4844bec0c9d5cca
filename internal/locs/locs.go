// 包 locs：从用户配置文档中提取四类位置指针
package locs

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/spf13/cast"
)

// ErrAbsent：路径缺失或坐标为空字符串，调用方静默跳过
var ErrAbsent = errors.New("locs: point absent")

// Kind：位置指针类型，Key 为 locs 下的字段名
type Kind struct {
	Label string
	Key   string
	Human string
}

// 文档注释：固定的位置指针表
// 约束：顺序即检查顺序；路径为 locs.<Key>[0..1]。
var Kinds = []Kind{
	{Label: "home", Key: "h", Human: "home"},
	{Label: "pokemon_pointer", Key: "p", Human: "pokémon"},
	{Label: "raid", Key: "r", Human: "raid"},
	{Label: "invasion", Key: "i", Human: "invasion"},
}

// ValueError：坐标元素格式不被接受（软失败，仅跳过该路径）
type ValueError struct {
	Path  string
	Value any
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("locs %s: value %#v: %v", e.Path, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// ErrIncomplete：坐标对只有一侧可用，整对丢弃
var ErrIncomplete = errors.New("coordinate pair has a single usable element")

var (
	errNotNumeric  = errors.New("unsupported value type")
	errNonFinite   = errors.New("non-finite number")
	errNotAnObject = errors.New("not an object")
	errEmptyDoc    = errors.New("config document: empty")
)

// Document：解析后的用户配置
type Document struct {
	locs map[string]json.RawMessage
}

// 文档注释：解析用户配置 JSON
// 约束：locs 下的值保留为原始片段，提取时再逐个转换，单个坐标越界不影响整份文档；
// locs 存在但不是对象时整份文档视为非法。
func Parse(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errEmptyDoc
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("config document: %w", err)
	}
	doc := &Document{}
	v, ok := root["locs"]
	if !ok || isNull(v) {
		return doc, nil
	}
	if err := json.Unmarshal(v, &doc.locs); err != nil {
		return nil, &ValueError{Path: "locs", Value: string(v), Err: errNotAnObject}
	}
	return doc, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// 文档注释：提取一个位置指针
// 返回：ErrAbsent 表示路径缺失或含空字符串；*ValueError 表示格式错误；两个元素都成功才返回点。
func (d *Document) Point(k Kind) (orb.Point, error) {
	path := "locs." + k.Key
	raw, ok := d.locs[k.Key]
	if !ok || isNull(raw) {
		return orb.Point{}, ErrAbsent
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return orb.Point{}, &ValueError{Path: path, Value: string(raw), Err: errNotNumeric}
	}
	x, errX := element(arr, 0, path)
	y, errY := element(arr, 1, path)
	switch {
	case errX == nil && errY == nil:
		return orb.Point{x, y}, nil
	case errX != nil && !errors.Is(errX, ErrAbsent):
		return orb.Point{}, errX
	case errY != nil && !errors.Is(errY, ErrAbsent):
		return orb.Point{}, errY
	case errX != nil && errY != nil:
		return orb.Point{}, ErrAbsent
	}
	// 一侧为空、另一侧有效
	return orb.Point{}, &ValueError{Path: path, Value: string(raw), Err: ErrIncomplete}
}

func element(arr []json.RawMessage, i int, path string) (float64, error) {
	if i >= len(arr) {
		return 0, ErrAbsent
	}
	p := fmt.Sprintf("%s[%d]", path, i)
	f, err := ToFloat(arr[i])
	if err != nil {
		if errors.Is(err, ErrAbsent) {
			return 0, err
		}
		return 0, &ValueError{Path: p, Value: string(arr[i]), Err: err}
	}
	return f, nil
}

// scalar：原始片段转为 string 或 json.Number，其他类型原样交给 ToFloat 拒绝
func scalar(raw json.RawMessage) any {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return nil
	}
	switch c := t[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return nil
		}
		return s
	case c == '-' || (c >= '0' && c <= '9'):
		return json.Number(t)
	}
	return nil
}

// 文档注释：坐标元素转 float64
// 约束：接受数字、数字字符串或二者的 JSON 原始片段；空字符串视为缺失；布尔、对象、数组、null 以及非有限值均为错误。
func ToFloat(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	if raw, ok := v.(json.RawMessage); ok {
		v = scalar(raw)
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return 0, ErrAbsent
		}
		f, err = cast.ToFloat64E(x)
	case json.Number:
		f, err = x.Float64()
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		f, err = cast.ToFloat64E(x)
	default:
		return 0, errNotNumeric
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNonFinite
	}
	return f, nil
}
