package models

import (
	"civicpulse/internal/civictime"
	"time"
)

// Representative 当选或在野代表。Type 是角色（ELECTED_REP / OPPOSITION_REP）。
type Representative struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string          `gorm:"type:uuid;not null;index" json:"user_id"`
	ElectionID     string          `gorm:"type:uuid;index" json:"election_id"`
	ConstituencyID string          `gorm:"type:uuid;not null;index" json:"constituency_id"`
	CandidateName  string          `gorm:"not null" json:"candidate_name"`
	PartyName      string          `json:"party_name"`
	Type           string          `gorm:"size:32" json:"type"`
	Status         string          `gorm:"size:20" json:"status"`
	TermStart      civictime.Stamp `gorm:"type:date" json:"term_start"`
	TermEnd        civictime.Stamp `gorm:"type:date" json:"term_end"`
}

func (Representative) TableName() string { return "representatives" }

// CitizenAlias 公民的匿名显示名，首次使用时生成，之后不再变化
type CitizenAlias struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	RandomUsername string    `gorm:"size:64;not null" json:"random_username"`
	CreatedAt      time.Time `json:"created_at"`
}

func (CitizenAlias) TableName() string { return "citizen_alias" }

// RepScore 由外部系统计算的代表评分，只读
type RepScore struct {
	ID                   string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	PostScore            int       `json:"post_score"`
	IssueResolutionScore int       `json:"issue_resolution_score"`
	OverallScore         int       `json:"overall_score"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (RepScore) TableName() string { return "rep_scores" }
