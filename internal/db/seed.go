package db

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DemoConstituencyID 本地演示数据使用的选区
const DemoConstituencyID = "6f1c0d52-2a8e-4d0e-9a51-0c7c1f6b9e10"

// SeedDemo 为内存模式写入一份小型演示数据，已有数据时跳过
func SeedDemo(ctx context.Context, s store.Store, now time.Time) {
	existing, err := store.All[models.Issue](ctx, s, store.Filter{"constituency_id": DemoConstituencyID})
	if err == nil && len(existing) > 0 {
		log.Debug().Msg("demo data already seeded, skipping")
		return
	}

	at := civictime.At(now)
	electionID := uuid.NewString()
	repUser := uuid.NewString()
	issueID := uuid.NewString()
	postID := uuid.NewString()

	rows := []any{
		&models.Election{ID: electionID, ElectionName: "Municipal Ward Election", ElectionType: "LOCAL", Status: models.ElectionOngoing, StartTime: at},
		&models.ElectionConstituency{ID: uuid.NewString(), ElectionID: electionID, ConstituencyID: DemoConstituencyID},
		&models.Representative{
			ID: uuid.NewString(), UserID: repUser, ElectionID: electionID, ConstituencyID: DemoConstituencyID,
			CandidateName: "A. Rao", PartyName: "Civic Front", Type: models.RoleElectedRep, Status: "ACTIVE",
			TermEnd: civictime.At(now.AddDate(0, 0, 12)),
		},
		&models.Issue{ID: issueID, ConstituencyID: DemoConstituencyID, Title: "Streetlights out on 4th Cross", Category: "Infrastructure", Status: models.IssueAccepted, CreatedAt: at},
		&models.PolicyPost{ID: postID, ConstituencyID: DemoConstituencyID, ElectionID: electionID, CreatedByUserID: repUser, CreatedByRole: models.RoleElectedRep, Title: "Ward budget for lighting", CreatedAt: at},
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, &models.IssueVote{ID: uuid.NewString(), IssueID: issueID, UserID: uuid.NewString(), VoteType: models.VoteUp, CreatedAt: at})
	}
	for i := 0; i < 3; i++ {
		rows = append(rows, &models.IssueComment{ID: uuid.NewString(), IssueID: issueID, UserID: uuid.NewString(), Comment: "Still dark here", CreatedAt: at})
	}

	for _, row := range rows {
		if err := s.Insert(ctx, row); err != nil {
			log.Warn().Err(err).Msg("failed to seed demo row")
		}
	}
	log.Info().Str("constituency_id", DemoConstituencyID).Msg("demo data seeded")
}
