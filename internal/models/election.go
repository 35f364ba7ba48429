package models

import (
	"civicpulse/internal/civictime"
)

const (
	ElectionDraft     = "Draft"
	ElectionUpcoming  = "Upcoming"
	ElectionOngoing   = "Ongoing"
	ElectionCompleted = "Completed"
)

type Election struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	ElectionName string          `gorm:"not null" json:"election_name"`
	ElectionType string          `gorm:"size:32" json:"election_type"`
	Status       string          `gorm:"size:20;index" json:"status"`
	StartTime    civictime.Stamp `json:"start_time"`
	EndTime      civictime.Stamp `json:"end_time"`
}

func (Election) TableName() string { return "elections" }

// ElectionConstituency 选举与选区的关联表
type ElectionConstituency struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ElectionID     string `gorm:"type:uuid;not null;index" json:"election_id"`
	ConstituencyID string `gorm:"type:uuid;not null;index" json:"constituency_id"`
}

func (ElectionConstituency) TableName() string { return "election_constituencies" }
