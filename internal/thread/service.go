package thread

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/ledger"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrPostNotFound = errors.New("thread: policy post not found")

// Service 读取政策帖的评论并构建评论树
type Service struct {
	store       store.Store
	clock       civictime.Clock
	concurrency int
}

func NewService(s store.Store, clock civictime.Clock, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Service{store: s, clock: clock, concurrency: concurrency}
}

// Threaded 返回帖子的评论森林，viewerID 为空表示匿名访问。
// 帖子和评论读取失败会返回错误；名册、别名、投票读取失败时降级为空。
func (s *Service) Threaded(ctx context.Context, postID, viewerID string) ([]Node, error) {
	post, err := store.One[models.PolicyPost](ctx, s.store, store.Filter{"id": postID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("thread: load post: %w", err)
	}

	comments, err := store.All[models.PolicyComment](ctx, s.store, store.Filter{"post_id": postID})
	if err != nil {
		return nil, fmt.Errorf("thread: load comments: %w", err)
	}

	in := Input{
		Post:     *post,
		Comments: comments,
		Roster:   map[string]models.Representative{},
		Aliases:  map[string]string{},
		Scores:   make(map[string]int, len(comments)),
		Viewer:   map[string]int{},
		Now:      s.clock.Now(),
		Location: s.clock.Location(),
	}
	if len(comments) == 0 {
		return Build(in), nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	g.Go(func() error {
		reps, err := s.roster(gctx, *post)
		if err != nil {
			log.Warn().Err(err).Str("post_id", postID).Msg("roster unavailable, authors shown as citizens")
			return nil
		}
		mu.Lock()
		in.Roster = RosterByUser(reps)
		mu.Unlock()
		return nil
	})

	for _, userID := range citizenAuthors(comments) {
		g.Go(func() error {
			alias, err := store.One[models.CitizenAlias](gctx, s.store, store.Filter{"user_id": userID})
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					log.Warn().Err(err).Str("user_id", userID).Msg("alias lookup failed")
				}
				return nil
			}
			mu.Lock()
			in.Aliases[userID] = alias.RandomUsername
			mu.Unlock()
			return nil
		})
	}

	for _, c := range comments {
		g.Go(func() error {
			votes, err := store.All[models.CommentVote](gctx, s.store, store.Filter{"comment_id": c.ID})
			if err != nil {
				log.Warn().Err(err).Str("comment_id", c.ID).Msg("comment votes unavailable, score shown as 0")
				return nil
			}
			mu.Lock()
			in.Scores[c.ID] = ledger.Sum(votes)
			if v := ledger.ValueOf(votes, viewerID); v != nil {
				in.Viewer[c.ID] = *v
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Build(in), nil
}

func (s *Service) roster(ctx context.Context, post models.PolicyPost) ([]models.Representative, error) {
	filter := store.Filter{"constituency_id": post.ConstituencyID}
	if post.ElectionID != "" {
		filter["election_id"] = post.ElectionID
	}
	return store.All[models.Representative](ctx, s.store, filter)
}

// citizenAuthors 需要查询别名的作者，去重并保持顺序
func citizenAuthors(comments []models.PolicyComment) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range comments {
		if c.AIGenerated || c.UserID == "" || seen[c.UserID] {
			continue
		}
		seen[c.UserID] = true
		out = append(out, c.UserID)
	}
	return out
}
