// Package civictime 处理“公民日”：所有“今天”判断都基于配置时区的日历日期。
package civictime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Day 是配置时区下的一个日历日期
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf 返回 t 在 loc 下所属的日期
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay 解析 YYYY-MM-DD
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}, nil
}

func (d Day) IsZero() bool { return d == Day{} }

// Start 返回当天零点
func (d Day) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays 按日历加减天数
func (d Day) AddDays(n int) Day {
	y, m, dd := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC).Date()
	return Day{Year: y, Month: m, Day: dd}
}

// DaysUntil 返回从 d 到 other 的整天数，other 在前时为负
func (d Day) DaysUntil(other Day) int {
	from := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	to := time.Date(other.Year, other.Month, other.Day, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock 提供“现在”和公民时区；测试中可以固定时间
type Clock struct {
	now func() time.Time
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	return Clock{now: time.Now, loc: loc}
}

// FixedClock 总是返回同一时刻
func FixedClock(at time.Time, loc *time.Location) Clock {
	return Clock{now: func() time.Time { return at }, loc: loc}
}

func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now().In(c.Location())
	}
	return c.now().In(c.Location())
}

// Today 当前公民日
func (c Clock) Today() Day {
	return DayOf(c.Now(), c.Location())
}
