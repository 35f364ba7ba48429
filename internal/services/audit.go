package services

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// 审计动作常量
const (
	ActionAddPolicyComment = "ADD_POLICY_COMMENT"
	ActionAIReply          = "AI_REPLY"
	ActionVotePolicy       = "VOTE_POLICY"
	ActionVoteComment      = "VOTE_COMMENT"
	ActionVoteIssue        = "VOTE_ISSUE"
	ActionGenerateBrief    = "GENERATE_BRIEF"
)

// 实体类型
const (
	EntityPolicyPost    = "rep_policy_posts"
	EntityPolicyComment = "rep_policy_comments"
	EntityIssue         = "issues"
	EntityBrief         = "constituency_ai_briefs"
)

// asyncAuditTimeout 异步写审计时使用的超时
const asyncAuditTimeout = 5 * time.Second

type Auditor struct {
	store store.Store
	clock civictime.Clock
}

func NewAuditor(s store.Store, clock civictime.Clock) *Auditor {
	return &Auditor{store: s, clock: clock}
}

// Record 写入一条审计记录
func (a *Auditor) Record(ctx context.Context, userID, action, entityType, entityID string) error {
	entry := models.AuditLog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  a.clock.Now(),
	}
	if err := a.store.Insert(ctx, &entry); err != nil {
		return fmt.Errorf("audit: %s %s/%s: %w", action, entityType, entityID, err)
	}
	return nil
}

// RecordAsync 在 goroutine 中写审计，失败只记日志。done 可为 nil。
func (a *Auditor) RecordAsync(userID, action, entityType, entityID string, done func(error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncAuditTimeout)
		defer cancel()
		err := a.Record(ctx, userID, action, entityType, entityID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("audit write failed")
		}
		if done != nil {
			done(err)
		}
	}()
}
