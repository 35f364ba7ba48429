// Package snapshot 汇总选区当天的公民信号，输出五层快照。
package snapshot

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"time"
)

type ElectionSignal struct {
	ElectionID string          `json:"election_id"`
	Name       string          `json:"name"`
	Status     string          `json:"status"`
	Start      civictime.Stamp `json:"start"`
	End        civictime.Stamp `json:"end"`
}

type TermSignal struct {
	RepresentativeID string        `json:"representative_id"`
	Name             string        `json:"name"`
	Party            string        `json:"party"`
	Role             string        `json:"role"`
	TermEnd          civictime.Day `json:"term_end"`
	DaysLeft         int           `json:"days_left"`
}

type BacklashSignal struct {
	IssueID       string `json:"issue_id"`
	Title         string `json:"title"`
	NegativeScore int    `json:"negative_score"`
}

type SupportSignal struct {
	IssueID string `json:"issue_id"`
	Title   string `json:"title"`
	Support int    `json:"support"`
}

type TrendingIssue struct {
	IssueID    string             `json:"issue_id"`
	Title      string             `json:"title"`
	Status     models.IssueStatus `json:"status"`
	Engagement int                `json:"engagement"`
}

type ActiveDebate struct {
	PostID            string `json:"post_id"`
	Title             string `json:"title"`
	CommentCountToday int    `json:"comment_count_today"`
}

type ActiveDiscussion struct {
	IssueID           string `json:"issue_id"`
	Title             string `json:"title"`
	CommentCountToday int    `json:"comment_count_today"`
}

type NewIssue struct {
	IssueID   string          `json:"issue_id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	CreatedAt civictime.Stamp `json:"created_at"`
}

type NewPolicyPost struct {
	PostID     string `json:"post_id"`
	Title      string `json:"title"`
	AuthorRole string `json:"author_role"`
	AuthorName string `json:"author_name"`
}

type ResolvedIssue struct {
	IssueID string `json:"issue_id"`
	Title   string `json:"title"`
}

// Governance 第一层：选举与任期
type Governance struct {
	ActiveElections []ElectionSignal `json:"active_elections"`
	RepTermsEnding  []TermSignal     `json:"rep_terms_ending"`
}

// Sentiment 第二层：反弹与支持
type Sentiment struct {
	BacklashSignals []BacklashSignal `json:"backlash_signals"`
	SupportedIssues []SupportSignal  `json:"supported_issues"`
}

// Focus 第三层：讨论热点
type Focus struct {
	TrendingIssues         []TrendingIssue    `json:"trending_issues"`
	ActivePolicyDebates    []ActiveDebate     `json:"active_policy_debates"`
	ActiveIssueDiscussions []ActiveDiscussion `json:"active_issue_discussions"`
}

// Fresh 第四层：今天的新内容
type Fresh struct {
	NewIssues      []NewIssue      `json:"new_issues"`
	NewPolicyPosts []NewPolicyPost `json:"new_policy_posts"`
	IssuesResolved []ResolvedIssue `json:"issues_resolved"`
}

// Meta 第五层：生成信息。Degraded 列出本次被降级为空的数据源。
type Meta struct {
	GeneratedAt time.Time     `json:"generated_at"`
	CivicDay    civictime.Day `json:"civic_day"`
	Degraded    []string      `json:"degraded"`
}

// Snapshot 选区快照。每一层总是存在，列表为空时序列化为 []。
type Snapshot struct {
	ConstituencyID string     `json:"constituency_id"`
	Governance     Governance `json:"governance"`
	Sentiment      Sentiment  `json:"sentiment"`
	Focus          Focus      `json:"focus"`
	Fresh          Fresh      `json:"fresh"`
	Meta           Meta       `json:"meta"`
}

// Empty 返回所有列表为空的快照
func Empty(constituencyID string, now time.Time, day civictime.Day) *Snapshot {
	return &Snapshot{
		ConstituencyID: constituencyID,
		Governance: Governance{
			ActiveElections: []ElectionSignal{},
			RepTermsEnding:  []TermSignal{},
		},
		Sentiment: Sentiment{
			BacklashSignals: []BacklashSignal{},
			SupportedIssues: []SupportSignal{},
		},
		Focus: Focus{
			TrendingIssues:         []TrendingIssue{},
			ActivePolicyDebates:    []ActiveDebate{},
			ActiveIssueDiscussions: []ActiveDiscussion{},
		},
		Fresh: Fresh{
			NewIssues:      []NewIssue{},
			NewPolicyPosts: []NewPolicyPost{},
			IssuesResolved: []ResolvedIssue{},
		},
		Meta: Meta{GeneratedAt: now, CivicDay: day, Degraded: []string{}},
	}
}
