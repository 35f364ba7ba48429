package snapshot

import (
	"civicpulse/internal/models"
	"civicpulse/internal/signals"
	"civicpulse/internal/store"
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// Accountability 代表的问责指标
type Accountability struct {
	RepUserID       string    `json:"rep_user_id"`
	ConstituencyID  string    `json:"constituency_id"`
	ResolutionRate  float64   `json:"resolution_rate"`
	EngagementScore int       `json:"engagement_score"`
	BalanceIndex    *float64  `json:"balance_index"`
	SystemScore     *int      `json:"system_score"`
	GeneratedAt     time.Time `json:"generated_at"`
	Degraded        []string  `json:"degraded"`
}

// Accountability 计算代表在选区内的问责指标。参与度和平衡度按选区内全部政策帖统计，只有 system_score 取决于 repUserID。
// 与快照一样，读取失败降级为“无数据”。
func (c *Composer) Accountability(ctx context.Context, repUserID, constituencyID string) (*Accountability, error) {
	r := &run{c: c, constituencyID: constituencyID}
	report := &Accountability{
		RepUserID:      repUserID,
		ConstituencyID: constituencyID,
		GeneratedAt:    c.clock.Now(),
	}

	var (
		issues []models.Issue
		posts  []models.PolicyPost
	)
	var g errgroup.Group
	g.Go(func() error {
		r.guard(ctx, "issues", func(ctx context.Context) (err error) {
			issues, err = store.All[models.Issue](ctx, c.store, store.Filter{"constituency_id": constituencyID})
			return err
		})
		return nil
	})
	g.Go(func() error {
		r.guard(ctx, "rep_policy_posts", func(ctx context.Context) (err error) {
			posts, err = store.All[models.PolicyPost](ctx, c.store, store.Filter{"constituency_id": constituencyID})
			return err
		})
		return nil
	})
	if repUserID != "" {
		g.Go(func() error {
			r.guard(ctx, "rep_scores", func(ctx context.Context) error {
				score, err := store.One[models.RepScore](ctx, c.store, store.Filter{"user_id": repUserID})
				if errors.Is(err, store.ErrNotFound) {
					return nil
				}
				if err != nil {
					return err
				}
				report.SystemScore = &score.OverallScore
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()

	counts := make([]int, len(posts))
	var detail errgroup.Group
	detail.SetLimit(c.opts.Concurrency)
	for i, p := range posts {
		detail.Go(func() error {
			r.guard(ctx, "rep_policy_comments/"+p.ID, func(ctx context.Context) error {
				comments, err := store.All[models.PolicyComment](ctx, c.store, store.Filter{"post_id": p.ID})
				counts[i] = len(comments)
				return err
			})
			return nil
		})
	}
	_ = detail.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	commentCounts := make(map[string]int, len(posts))
	for i, p := range posts {
		commentCounts[p.ID] = counts[i]
	}
	report.ResolutionRate = signals.ResolutionRate(issues)
	report.EngagementScore = signals.PolicyEngagement(posts, commentCounts)
	report.BalanceIndex = signals.BalanceIndex(posts)
	report.Degraded = r.degradedList()
	return report, nil
}
