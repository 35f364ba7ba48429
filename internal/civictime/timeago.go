package civictime

import (
	"fmt"
	"time"
)

// TimeAgo 相对时间显示，超过一周显示日期
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.In(now.Location()).Format(DisplayDateLayout)
	}
}

// FormatDisplay formats t for display in loc.
func FormatDisplay(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DisplayLayout)
}
