package snapshot

import (
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// issueData 单个问题及其附属数据。某项读取失败时对应的 ok 为 false。
type issueData struct {
	issue       models.Issue
	votes       []models.IssueVote
	comments    []models.IssueComment
	feedback    []models.IssueFeedback
	resolutions []models.IssueResolution

	votesOK, commentsOK, feedbackOK, resolutionsOK bool
}

type postData struct {
	post       models.PolicyPost
	comments   []models.PolicyComment
	commentsOK bool
}

// inputs 一次快照需要的全部外部数据
type inputs struct {
	elections []models.Election
	reps      []models.Representative
	issues    []*issueData
	posts     []*postData
}

// run 一次快照生成过程中的降级记录
type run struct {
	c              *Composer
	constituencyID string

	mu       sync.Mutex
	degraded []string
}

// guard 为单个读取加上超时，失败时记录并返回 false，绝不向上传播
func (r *run) guard(ctx context.Context, what string, fetch func(ctx context.Context) error) bool {
	fctx, cancel := context.WithTimeout(ctx, r.c.opts.FetchTimeout)
	defer cancel()
	if err := fetch(fctx); err != nil {
		r.degrade(what, err)
		return false
	}
	return true
}

func (r *run) degrade(what string, err error) {
	total := r.c.failures.Add(1)
	log.Warn().
		Err(err).
		Int64("failures_total", total).
		Str("constituency_id", r.constituencyID).
		Str("fetch", what).
		Msg("collaborator fetch failed, treating as no data")
	r.mu.Lock()
	r.degraded = append(r.degraded, what)
	r.mu.Unlock()
}

// gather 第一阶段并行读取各列表，第二阶段并行读取每个条目的附属数据
func (r *run) gather(ctx context.Context) inputs {
	var (
		in    inputs
		links []models.ElectionConstituency
	)
	s := r.c.store
	id := r.constituencyID

	var g errgroup.Group
	g.Go(func() error {
		r.guard(ctx, "election_constituencies", func(ctx context.Context) (err error) {
			links, err = store.All[models.ElectionConstituency](ctx, s, store.Filter{"constituency_id": id})
			return err
		})
		return nil
	})
	g.Go(func() error {
		r.guard(ctx, "representatives", func(ctx context.Context) (err error) {
			in.reps, err = store.All[models.Representative](ctx, s, store.Filter{"constituency_id": id})
			return err
		})
		return nil
	})
	g.Go(func() error {
		var issues []models.Issue
		r.guard(ctx, "issues", func(ctx context.Context) (err error) {
			issues, err = store.All[models.Issue](ctx, s, store.Filter{"constituency_id": id})
			return err
		})
		for _, is := range issues {
			in.issues = append(in.issues, &issueData{issue: is})
		}
		return nil
	})
	g.Go(func() error {
		var posts []models.PolicyPost
		r.guard(ctx, "rep_policy_posts", func(ctx context.Context) (err error) {
			posts, err = store.All[models.PolicyPost](ctx, s, store.Filter{"constituency_id": id})
			return err
		})
		for _, p := range posts {
			in.posts = append(in.posts, &postData{post: p})
		}
		return nil
	})
	_ = g.Wait()

	var detail errgroup.Group
	detail.SetLimit(r.c.opts.Concurrency)
	elections := make([]*models.Election, len(links))

	for i, link := range links {
		detail.Go(func() error {
			r.guard(ctx, "elections/"+link.ElectionID, func(ctx context.Context) error {
				e, err := store.One[models.Election](ctx, s, store.Filter{"id": link.ElectionID})
				if errors.Is(err, store.ErrNotFound) {
					// 关联指向已删除的选举，跳过
					return nil
				}
				if err != nil {
					return err
				}
				elections[i] = e
				return nil
			})
			return nil
		})
	}

	for _, d := range in.issues {
		issueID := d.issue.ID
		detail.Go(func() error {
			d.votesOK = r.guard(ctx, "issue_votes/"+issueID, func(ctx context.Context) (err error) {
				d.votes, err = store.All[models.IssueVote](ctx, s, store.Filter{"issue_id": issueID})
				return err
			})
			return nil
		})
		detail.Go(func() error {
			d.commentsOK = r.guard(ctx, "issue_comments/"+issueID, func(ctx context.Context) (err error) {
				d.comments, err = store.All[models.IssueComment](ctx, s, store.Filter{"issue_id": issueID})
				return err
			})
			return nil
		})
		detail.Go(func() error {
			d.feedbackOK = r.guard(ctx, "issue_feedback/"+issueID, func(ctx context.Context) (err error) {
				d.feedback, err = store.All[models.IssueFeedback](ctx, s, store.Filter{"issue_id": issueID})
				return err
			})
			return nil
		})
		detail.Go(func() error {
			d.resolutionsOK = r.guard(ctx, "issue_resolution/"+issueID, func(ctx context.Context) (err error) {
				d.resolutions, err = store.All[models.IssueResolution](ctx, s, store.Filter{"issue_id": issueID})
				return err
			})
			return nil
		})
	}

	for _, d := range in.posts {
		postID := d.post.ID
		detail.Go(func() error {
			d.commentsOK = r.guard(ctx, "rep_policy_comments/"+postID, func(ctx context.Context) (err error) {
				d.comments, err = store.All[models.PolicyComment](ctx, s, store.Filter{"post_id": postID})
				return err
			})
			return nil
		})
	}
	_ = detail.Wait()

	for _, e := range elections {
		if e != nil {
			in.elections = append(in.elections, *e)
		}
	}
	return in
}

func (r *run) degradedList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.degraded...)
}

func (in inputs) String() string {
	return fmt.Sprintf("elections=%d reps=%d issues=%d posts=%d", len(in.elections), len(in.reps), len(in.issues), len(in.posts))
}
