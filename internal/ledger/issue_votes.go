package ledger

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CastIssueVote 追加一条问题投票。
// 问题投票不走切换状态机，同一用户的多次投票都会计入。
func CastIssueVote(ctx context.Context, s store.Store, issueID, userID, voteType string) (*models.IssueVote, error) {
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return nil, fmt.Errorf("%w: vote_type %q (must be up or down)", ErrInvalidVoteValue, voteType)
	}
	vote := &models.IssueVote{
		ID:        uuid.NewString(),
		IssueID:   issueID,
		UserID:    userID,
		VoteType:  voteType,
		CreatedAt: civictime.At(time.Now()),
	}
	if err := s.Insert(ctx, vote); err != nil {
		return nil, fmt.Errorf("ledger: insert issue vote: %w", err)
	}
	return vote, nil
}
