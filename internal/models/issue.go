package models

import (
	"civicpulse/internal/civictime"
)

type IssueStatus string

const (
	IssueOpen       IssueStatus = "Open"
	IssueAccepted   IssueStatus = "Accepted"
	IssueInProgress IssueStatus = "In Progress"
	IssueResolved   IssueStatus = "Resolved"
	IssueClosed     IssueStatus = "Closed"
)

// Issue 公民提交的问题
type Issue struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	ConstituencyID string          `gorm:"type:uuid;not null;index" json:"constituency_id"`
	CreatedBy      string          `gorm:"type:uuid" json:"created_by"`
	Title          string          `gorm:"not null" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	Category       string          `gorm:"size:64" json:"category"`
	Status         IssueStatus     `gorm:"size:20;default:'Open'" json:"status"`
	CreatedAt      civictime.Stamp `json:"created_at"`
}

func (Issue) TableName() string { return "issues" }

type IssueComment struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	IssueID   string          `gorm:"type:uuid;not null;index" json:"issue_id"`
	UserID    string          `gorm:"type:uuid;not null" json:"user_id"`
	Comment   string          `gorm:"type:text" json:"comment"`
	CreatedAt civictime.Stamp `json:"created_at"`
}

func (IssueComment) TableName() string { return "issue_comments" }

// IssueFeedback 解决后的满意度评分，Rating 缺失时按 5 分处理
type IssueFeedback struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	IssueID   string          `gorm:"type:uuid;not null;index" json:"issue_id"`
	UserID    string          `gorm:"type:uuid" json:"user_id"`
	Rating    *int            `json:"rating"`
	Comment   string          `gorm:"type:text" json:"comment"`
	CreatedAt civictime.Stamp `json:"created_at"`
}

func (IssueFeedback) TableName() string { return "issue_feedback" }

type IssueResolution struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	IssueID          string          `gorm:"type:uuid;not null;index" json:"issue_id"`
	ResolvedBy       string          `gorm:"type:uuid" json:"resolved_by"`
	ResolutionNote   string          `gorm:"type:text" json:"resolution_note"`
	CitizenConfirmed bool            `gorm:"default:false" json:"citizen_confirmed"`
	ConfirmedAt      civictime.Stamp `json:"confirmed_at"`
}

func (IssueResolution) TableName() string { return "issue_resolution" }
