package models

import (
	"civicpulse/internal/civictime"
)

// PolicyComment 政策帖下的评论，ParentCommentID 为空表示顶层评论
type PolicyComment struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	PostID          string          `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentCommentID *string         `gorm:"type:uuid;index" json:"parent_comment_id"`
	Content         string          `gorm:"type:text;not null" json:"content"`
	AIGenerated     bool            `gorm:"default:false" json:"ai_generated"`
	CreatedAt       civictime.Stamp `json:"created_at"`
}

func (PolicyComment) TableName() string { return "rep_policy_comments" }
