package civictime

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMalformedTimestamp = errors.New("civictime: malformed timestamp")

// 显示格式，同时也是可接受的输入格式
const (
	DisplayLayout     = "02 Jan 2006, 03:04 PM"
	DisplayDateLayout = "02 Jan 2006"
)

// 带时区的格式
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
}

// 无时区的格式，按公民时区解释。秒后的小数部分解析时自动接受。
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
	DisplayLayout,
	DisplayDateLayout,
}

// ParseInstant 解析协作方给出的时间文本
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// Stamp 是来自外部存储的时间值：可能是数据库里的 timestamptz，
// 也可能是任意一种文本格式。解析推迟到使用时进行。
type Stamp struct {
	at    time.Time
	typed bool
	raw   string
}

// At wraps an already typed instant.
func At(t time.Time) Stamp { return Stamp{at: t, typed: true} }

// Raw wraps text as received.
func Raw(s string) Stamp { return Stamp{raw: s} }

func (s Stamp) IsZero() bool {
	return !s.typed && strings.TrimSpace(s.raw) == ""
}

// Time 解析为时刻，无时区文本按 loc 解释
func (s Stamp) Time(loc *time.Location) (time.Time, error) {
	if s.typed {
		if loc == nil {
			return s.at, nil
		}
		return s.at.In(loc), nil
	}
	return ParseInstant(s.raw, loc)
}

// Date 把 Stamp 当作日历日期（例如任期截止日）。
// 午夜的 typed 值和 "YYYY-MM-DD..." 前缀的文本直接取日期，不做时区换算。
func (s Stamp) Date(loc *time.Location) (Day, error) {
	if s.typed {
		h, m, sec := s.at.Clock()
		if h == 0 && m == 0 && sec == 0 && s.at.Nanosecond() == 0 {
			y, mo, d := s.at.Date()
			return Day{Year: y, Month: mo, Day: d}, nil
		}
		return DayOf(s.at, loc), nil
	}
	raw := strings.TrimSpace(s.raw)
	if len(raw) >= 10 {
		if d, err := ParseDay(raw[:10]); err == nil {
			return d, nil
		}
	}
	t, err := ParseInstant(raw, loc)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t, loc), nil
}

func (s Stamp) String() string {
	if s.typed {
		return s.at.Format(time.RFC3339Nano)
	}
	return s.raw
}

// Scan implements sql.Scanner.
func (s *Stamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Stamp{}
	case time.Time:
		*s = At(v)
	case string:
		*s = Raw(v)
	case []byte:
		*s = Raw(string(v))
	default:
		return fmt.Errorf("civictime: cannot scan %T into Stamp", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (s Stamp) Value() (driver.Value, error) {
	if s.typed {
		return s.at, nil
	}
	if s.IsZero() {
		return nil, nil
	}
	if t, err := ParseInstant(s.raw, time.UTC); err == nil {
		return t, nil
	}
	return s.raw, nil
}

// GormDataType 迁移时的列类型
func (Stamp) GormDataType() string { return "timestamptz" }

func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *Stamp) UnmarshalJSON(b []byte) error {
	var v *string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedTimestamp, b)
	}
	if v == nil {
		*s = Stamp{}
		return nil
	}
	*s = Raw(*v)
	return nil
}

// InWindow 判断时间戳是否落在公民日 day 内。
// 缺失或无法解析的时间戳视为不在窗口内。
func InWindow(s Stamp, day Day, loc *time.Location) bool {
	if s.IsZero() {
		return false
	}
	t, err := s.Time(loc)
	if err != nil {
		return false
	}
	return DayOf(t, loc) == day
}

// CountInWindow 统计 items 中落在 day 内的条目数
func CountInWindow[T any](items []T, stamp func(T) Stamp, day Day, loc *time.Location) int {
	n := 0
	for _, it := range items {
		if InWindow(stamp(it), day, loc) {
			n++
		}
	}
	return n
}
