package models

import (
	"civicpulse/internal/civictime"
)

// CommentVote 评论投票，每个 (comment_id, user_id) 最多一行
type CommentVote struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID string          `gorm:"type:uuid;not null;uniqueIndex:idx_comment_vote_user" json:"comment_id"`
	UserID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_comment_vote_user" json:"user_id"`
	VoteValue int             `gorm:"not null" json:"vote_value"` // 1 or -1
	CreatedAt civictime.Stamp `json:"created_at"`
}

func (CommentVote) TableName() string { return "rep_policy_comment_votes" }

func (v CommentVote) LedgerID() string   { return v.ID }
func (v CommentVote) LedgerUser() string { return v.UserID }
func (v CommentVote) LedgerValue() int   { return v.VoteValue }

// PolicyVote 政策帖投票，与评论投票同样是一人一票
type PolicyVote struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_policy_vote_user" json:"post_id"`
	UserID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_policy_vote_user" json:"user_id"`
	VoteValue int             `gorm:"not null" json:"vote_value"`
	CreatedAt civictime.Stamp `json:"created_at"`
}

func (PolicyVote) TableName() string { return "rep_policy_votes" }

func (v PolicyVote) LedgerID() string   { return v.ID }
func (v PolicyVote) LedgerUser() string { return v.UserID }
func (v PolicyVote) LedgerValue() int   { return v.VoteValue }

// 问题投票类型
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// IssueVote 问题投票。只追加，不做唯一约束。
type IssueVote struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	IssueID   string          `gorm:"type:uuid;not null;index" json:"issue_id"`
	UserID    string          `gorm:"type:uuid;not null;index" json:"user_id"`
	VoteType  string          `gorm:"size:8;not null" json:"vote_type"`
	CreatedAt civictime.Stamp `json:"created_at"`
}

func (IssueVote) TableName() string { return "issue_votes" }
