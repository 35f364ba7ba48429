package signals

import (
	"civicpulse/internal/models"
	"math"
)

// ResolutionRate = 已关闭 / 已受理（受理、处理中、已解决、已关闭），两位小数。
// 没有受理过任何问题时为 0。
func ResolutionRate(issues []models.Issue) float64 {
	accepted, closed := 0, 0
	for _, i := range issues {
		switch i.Status {
		case models.IssueAccepted, models.IssueInProgress, models.IssueResolved:
			accepted++
		case models.IssueClosed:
			accepted++
			closed++
		}
	}
	if accepted == 0 {
		return 0
	}
	return round2(float64(closed) / float64(accepted))
}

// PolicyEngagement 所有政策帖的 (赞成数 + 评论数) 之和
func PolicyEngagement(posts []models.PolicyPost, commentCounts map[string]int) int {
	total := 0
	for _, p := range posts {
		total += p.Upvotes + commentCounts[p.ID]
	}
	return total
}

// BalanceIndex 政策帖 AI 置信度的平均值，没有数据时返回 nil
func BalanceIndex(posts []models.PolicyPost) *float64 {
	sum, n := 0.0, 0
	for _, p := range posts {
		if p.AIConfidenceScore != nil {
			sum += *p.AIConfidenceScore
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := round2(sum / float64(n))
	return &v
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
