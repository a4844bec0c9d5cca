package audit

import (
	"fmt"

	"city-audit/internal/locs"

	"github.com/paulmach/orb"
)

// User：一条活跃用户记录，Config 为原始配置文档
type User struct {
	UserID   int64
	Username string
	RegionID int64
	Config   string
}

type FindingType int

const (
	FindingDisabledRegion FindingType = iota + 1
	FindingOtherRegion
	FindingOutside
)

func (t FindingType) String() string {
	switch t {
	case FindingDisabledRegion:
		return "disabled_region"
	case FindingOtherRegion:
		return "other_region"
	case FindingOutside:
		return "outside"
	}
	return "unknown"
}

type RegionRef struct {
	ID   int64
	Name string
}

// 文档注释：一条稽核发现
// 约束：FindingDisabledRegion 时 Kind 为零值且 Assigned.Name 为空；Actual 仅在 FindingOtherRegion 时非空。
type Finding struct {
	Type     FindingType
	UserID   int64
	Username string
	Kind     locs.Kind
	Point    orb.Point
	Assigned RegionRef
	Actual   *RegionRef
}

// String：面向人工阅读的单行描述
func (f Finding) String() string {
	switch f.Type {
	case FindingDisabledRegion:
		return fmt.Sprintf("User @%s (%d) is assigned to disabled city %d", f.Username, f.UserID, f.Assigned.ID)
	case FindingOtherRegion:
		return fmt.Sprintf("User @%s (%d) has %s pointer in %s (%d) instead of %s (%d)",
			f.Username, f.UserID, f.Kind.Human, f.Actual.Name, f.Actual.ID, f.Assigned.Name, f.Assigned.ID)
	case FindingOutside:
		return fmt.Sprintf("User @%s (%d) has %s pointer out of any known city (assigned to %s (%d))",
			f.Username, f.UserID, f.Kind.Human, f.Assigned.Name, f.Assigned.ID)
	}
	return fmt.Sprintf("User @%s (%d): unknown finding %d", f.Username, f.UserID, int(f.Type))
}
