package signals

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"time"
)

const DefaultTermHorizonDays = 30

// Expiring 即将卸任的代表
type Expiring struct {
	Representative models.Representative
	TermEnd        civictime.Day
	DaysLeft       int
}

// ExpiringWithin 返回任期在 [today, today+horizonDays] 内结束的代表，保持输入顺序。
// 缺失或无法解析的截止日期直接跳过。
func ExpiringWithin(reps []models.Representative, today civictime.Day, horizonDays int, loc *time.Location) []Expiring {
	out := []Expiring{}
	for _, r := range reps {
		if r.TermEnd.IsZero() {
			continue
		}
		end, err := r.TermEnd.Date(loc)
		if err != nil {
			continue
		}
		days := today.DaysUntil(end)
		if days >= 0 && days <= horizonDays {
			out = append(out, Expiring{Representative: r, TermEnd: end, DaysLeft: days})
		}
	}
	return out
}
