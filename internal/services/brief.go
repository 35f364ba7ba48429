package services

import (
	"civicpulse/internal/models"
	"civicpulse/internal/snapshot"
	"civicpulse/internal/store"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/datatypes"
)

// BriefService 基于快照生成选区 AI 简报，每个选区只保留最新一份
type BriefService struct {
	store    store.Store
	composer *snapshot.Composer
	audit    *Auditor
	model    llms.Model
	timeout  time.Duration
}

func NewBriefService(s store.Store, composer *snapshot.Composer, audit *Auditor, model llms.Model, timeout time.Duration) *BriefService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &BriefService{store: s, composer: composer, audit: audit, model: model, timeout: timeout}
}

func (b *BriefService) Enabled() bool {
	return b.model != nil
}

// Generate 生成并保存简报。requestedBy 为空表示定时任务触发。
func (b *BriefService) Generate(ctx context.Context, constituencyID, requestedBy string) (*models.ConstituencyBrief, error) {
	if b.model == nil {
		return nil, ErrAIDisabled
	}

	snap, err := b.composer.Compose(ctx, constituencyID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("services: encode snapshot: %w", err)
	}

	actx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	summary, err := complete(actx, b.model, briefPrompt, map[string]any{
		"constituency": constituencyID,
		"civic_day":    snap.Meta.CivicDay.String(),
		"signals":      string(raw),
	})
	if err != nil {
		return nil, err
	}

	brief, err := b.upsert(ctx, constituencyID, summary, raw, snap.Meta.GeneratedAt)
	if err != nil {
		return nil, err
	}
	if requestedBy != "" {
		b.audit.RecordAsync(requestedBy, ActionGenerateBrief, EntityBrief, brief.ID, nil)
	}
	log.Info().
		Str("constituency_id", constituencyID).
		Strs("degraded", snap.Meta.Degraded).
		Msg("constituency brief generated")
	return brief, nil
}

func (b *BriefService) upsert(ctx context.Context, constituencyID, summary string, raw []byte, at time.Time) (*models.ConstituencyBrief, error) {
	var out *models.ConstituencyBrief
	err := b.store.Exclusive(ctx, "brief:"+constituencyID, func(tx store.Store) error {
		existing, err := store.One[models.ConstituencyBrief](ctx, tx, store.Filter{"constituency_id": constituencyID})
		switch {
		case errors.Is(err, store.ErrNotFound):
			out = &models.ConstituencyBrief{
				ID:             uuid.NewString(),
				ConstituencyID: constituencyID,
				SummaryText:    summary,
				Snapshot:       datatypes.JSON(raw),
				GeneratedAt:    at,
			}
			return tx.Insert(ctx, out)
		case err != nil:
			return err
		}

		if err := tx.Update(ctx, &models.ConstituencyBrief{}, existing.ID, store.Filter{
			"summary_text": summary,
			"snapshot":     datatypes.JSON(raw),
			"generated_at": at,
		}); err != nil {
			return err
		}
		existing.SummaryText = summary
		existing.Snapshot = datatypes.JSON(raw)
		existing.GeneratedAt = at
		out = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("services: save brief %s: %w", constituencyID, err)
	}
	return out, nil
}

// Latest 返回已保存的简报，不存在时返回 store.ErrNotFound
func (b *BriefService) Latest(ctx context.Context, constituencyID string) (*models.ConstituencyBrief, error) {
	return store.One[models.ConstituencyBrief](ctx, b.store, store.Filter{"constituency_id": constituencyID})
}

// Constituencies 已有简报的选区，供每日刷新使用
func (b *BriefService) Constituencies(ctx context.Context) ([]string, error) {
	briefs, err := store.All[models.ConstituencyBrief](ctx, b.store, store.Filter{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(briefs))
	for _, br := range briefs {
		ids = append(ids, br.ConstituencyID)
	}
	return ids, nil
}
