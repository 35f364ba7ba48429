package models

import (
	"time"

	"gorm.io/datatypes"
)

// ConstituencyBrief AI 生成的选区简报，每个选区一行
type ConstituencyBrief struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	ConstituencyID string         `gorm:"type:uuid;uniqueIndex;not null" json:"constituency_id"`
	SummaryText    string         `gorm:"type:text;not null" json:"summary_text"`
	Snapshot       datatypes.JSON `json:"snapshot"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

func (ConstituencyBrief) TableName() string { return "constituency_ai_briefs" }
