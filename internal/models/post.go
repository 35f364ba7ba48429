package models

import (
	"civicpulse/internal/civictime"
)

// 作者角色
const (
	RoleElectedRep    = "ELECTED_REP"
	RoleOppositionRep = "OPPOSITION_REP"
	RoleCitizen       = "CITIZEN"
)

// PolicyPost 代表发布的政策帖，公民可以投票和讨论
type PolicyPost struct {
	ID                      string          `gorm:"type:uuid;primaryKey" json:"id"`
	ConstituencyID          string          `gorm:"type:uuid;not null;index" json:"constituency_id"`
	ElectionID              string          `gorm:"type:uuid;index" json:"election_id"`
	CreatedByUserID         string          `gorm:"type:uuid;not null;index" json:"created_by_user_id"`
	CreatedByRole           string          `gorm:"size:32;not null" json:"created_by_role"`
	Title                   string          `gorm:"not null" json:"title"`
	RepresentativeStatement string          `gorm:"type:text" json:"representative_statement"`
	OppositionStatement     string          `gorm:"type:text" json:"opposition_statement"`
	Status                  string          `gorm:"size:20;default:'OPEN'" json:"status"`
	Upvotes                 int             `gorm:"default:0" json:"upvotes"`
	Downvotes               int             `gorm:"default:0" json:"downvotes"`
	AIConfidenceScore       *float64        `json:"ai_confidence_score"`
	CreatedAt               civictime.Stamp `json:"created_at"`
}

func (PolicyPost) TableName() string { return "rep_policy_posts" }
