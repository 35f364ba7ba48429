package handlers

import (
	"civicpulse/internal/ledger"
	"civicpulse/internal/models"
	"civicpulse/internal/services"
	"civicpulse/internal/snapshot"
	"civicpulse/internal/store"
	"civicpulse/internal/utils"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type VoteHandler struct {
	store     store.Store
	comments  *ledger.Ledger[models.CommentVote]
	policies  *ledger.Ledger[models.PolicyVote]
	audit     *services.Auditor
	snapshots *utils.Cache[*snapshot.Snapshot]
}

func NewVoteHandler(s store.Store, audit *services.Auditor, snapshots *utils.Cache[*snapshot.Snapshot]) *VoteHandler {
	return &VoteHandler{
		store:     s,
		comments:  ledger.NewCommentLedger(s),
		policies:  ledger.NewPolicyLedger(s),
		audit:     audit,
		snapshots: snapshots,
	}
}

type voteRequest struct {
	Value int `json:"value"`
}

type issueVoteRequest struct {
	VoteType string `json:"vote_type"`
}

// VoteComment 评论投票：同值再投撤销，异值切换
func (h *VoteHandler) VoteComment(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	commentID := c.Param("id")
	userID := viewerID(c)

	if !ledger.ValidValue(req.Value) {
		RespondError(c, ledger.ErrInvalidVoteValue)
		return
	}
	if _, err := store.One[models.PolicyComment](ctx, h.store, store.Filter{"id": commentID}); err != nil {
		RespondError(c, err)
		return
	}

	transition, err := h.comments.Cast(ctx, commentID, userID, req.Value)
	if err != nil {
		RespondError(c, err)
		return
	}
	score, err := h.comments.Score(ctx, commentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	viewerVote, err := h.comments.Vote(ctx, commentID, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.audit.RecordAsync(userID, services.ActionVoteComment, services.EntityPolicyComment, commentID, nil)

	c.JSON(http.StatusOK, gin.H{
		"transition":  transition,
		"score":       score,
		"viewer_vote": viewerVote,
	})
}

// VotePolicy 政策帖投票，之后用账本重新计算帖子上的计数
func (h *VoteHandler) VotePolicy(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	postID := c.Param("id")
	userID := viewerID(c)

	if !ledger.ValidValue(req.Value) {
		RespondError(c, ledger.ErrInvalidVoteValue)
		return
	}
	post, err := store.One[models.PolicyPost](ctx, h.store, store.Filter{"id": postID})
	if err != nil {
		RespondError(c, err)
		return
	}

	transition, err := h.policies.Cast(ctx, postID, userID, req.Value)
	if err != nil {
		RespondError(c, err)
		return
	}
	up, down, err := h.refreshPolicyCounters(ctx, postID)
	if err != nil {
		RespondError(c, err)
		return
	}
	viewerVote, err := h.policies.Vote(ctx, postID, userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.audit.RecordAsync(userID, services.ActionVotePolicy, services.EntityPolicyPost, postID, nil)
	h.snapshots.DeletePrefix(snapshotKeyPrefix(post.ConstituencyID))

	c.JSON(http.StatusOK, gin.H{
		"transition":  transition,
		"upvotes":     up,
		"downvotes":   down,
		"viewer_vote": viewerVote,
	})
}

// refreshPolicyCounters 在按帖子加锁的独占区内统计账本并回写计数，
// 并发投票时最后写入的一定是最新的统计。
func (h *VoteHandler) refreshPolicyCounters(ctx context.Context, postID string) (up, down int, err error) {
	tallied := false
	err = h.store.Exclusive(ctx, "post_counters:"+postID, func(tx store.Store) error {
		u, d, err := h.policies.With(tx).Tally(ctx, postID)
		if err != nil {
			return err
		}
		up, down, tallied = u, d, true
		return tx.Update(ctx, &models.PolicyPost{}, postID, store.Filter{"upvotes": up, "downvotes": down})
	})
	if err != nil && tallied {
		// 计数只是缓存，账本才是准的
		log.Warn().Err(err).Str("post_id", postID).Msg("refresh post vote counters failed")
		return up, down, nil
	}
	return up, down, err
}

// VoteIssue 问题投票，只追加
func (h *VoteHandler) VoteIssue(c *gin.Context) {
	var req issueVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	issueID := c.Param("id")
	userID := viewerID(c)

	issue, err := store.One[models.Issue](ctx, h.store, store.Filter{"id": issueID})
	if err != nil {
		RespondError(c, err)
		return
	}
	vote, err := ledger.CastIssueVote(ctx, h.store, issueID, userID, req.VoteType)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.audit.RecordAsync(userID, services.ActionVoteIssue, services.EntityIssue, issueID, nil)
	h.snapshots.DeletePrefix(snapshotKeyPrefix(issue.ConstituencyID))

	c.JSON(http.StatusCreated, vote)
}
