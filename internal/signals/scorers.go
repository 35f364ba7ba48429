// Package signals 包含快照用到的纯函数：评分、阈值判断、排名和任期扫描。
// 这里不做任何 I/O，所有“今天”都由调用方传入。
package signals

import (
	"civicpulse/internal/models"
)

const (
	ActivityThreshold = 3 // 当天评论数达到即为“活跃”
	BacklashThreshold = 3
	SupportThreshold  = 5
	LowRatingCeiling  = 2 // 评分 <= 2 记为低分
	DefaultRating     = 5 // 缺失评分按满分处理
)

// VoteTally 赞成/反对计数
type VoteTally struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

func (t VoteTally) Net() int { return t.Up - t.Down }

// TallyIssueVotes 统计问题投票，未知类型忽略
func TallyIssueVotes(votes []models.IssueVote) VoteTally {
	var t VoteTally
	for _, v := range votes {
		switch v.VoteType {
		case models.VoteUp:
			t.Up++
		case models.VoteDown:
			t.Down++
		}
	}
	return t
}

// Engagement = (赞成 - 反对) + 评论数
func Engagement(t VoteTally, comments int) int {
	return t.Net() + comments
}

func IsActive(commentsToday int) bool {
	return commentsToday >= ActivityThreshold
}

// LowRatings 低分反馈数量
func LowRatings(feedback []models.IssueFeedback) int {
	n := 0
	for _, f := range feedback {
		rating := DefaultRating
		if f.Rating != nil {
			rating = *f.Rating
		}
		if rating <= LowRatingCeiling {
			n++
		}
	}
	return n
}

// BacklashScore = 反对票 + 低分反馈
func BacklashScore(t VoteTally, feedback []models.IssueFeedback) int {
	return t.Down + LowRatings(feedback)
}

func IsBacklash(score int) bool {
	return score >= BacklashThreshold
}

// SupportScore 只看赞成票
func SupportScore(t VoteTally) int {
	return t.Up
}

func IsSupported(score int) bool {
	return score >= SupportThreshold
}
