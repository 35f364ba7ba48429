package services

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"civicpulse/internal/thread"
	"civicpulse/internal/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrEmptyComment  = errors.New("services: comment content is empty")
	ErrInvalidParent = errors.New("services: parent comment does not belong to this post")
)

// AIOptions AI 回复相关配置
type AIOptions struct {
	SystemUserID string        // AI 回复的作者
	Timeout      time.Duration // 单次调用超时
}

// CommentService 政策帖评论的写入
type CommentService struct {
	store   store.Store
	clock   civictime.Clock
	aliases *AliasService
	audit   *Auditor
	model   llms.Model // 为 nil 时不生成 AI 回复
	ai      AIOptions
}

func NewCommentService(s store.Store, clock civictime.Clock, aliases *AliasService, audit *Auditor, model llms.Model, ai AIOptions) *CommentService {
	if ai.Timeout <= 0 {
		ai.Timeout = 20 * time.Second
	}
	return &CommentService{store: s, clock: clock, aliases: aliases, audit: audit, model: model, ai: ai}
}

// Added AddComment 的结果，Reply 只在生成了 AI 回复时非 nil
type Added struct {
	Comment models.PolicyComment  `json:"comment"`
	Reply   *models.PolicyComment `json:"reply,omitempty"`
}

// AddComment 发表评论。parentID 为空表示顶层评论。
// 内容包含 @ai 时追加一条 AI 回复，AI 失败不影响评论本身。
func (s *CommentService) AddComment(ctx context.Context, postID, userID, content, parentID string) (*Added, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	post, err := store.One[models.PolicyPost](ctx, s.store, store.Filter{"id": postID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, thread.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("services: load post: %w", err)
	}

	var parent *string
	if parentID != "" {
		_, err := store.One[models.PolicyComment](ctx, s.store, store.Filter{"id": parentID, "post_id": postID})
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidParent
		}
		if err != nil {
			return nil, fmt.Errorf("services: load parent: %w", err)
		}
		parent = &parentID
	}

	official, err := s.isOfficial(ctx, *post, userID)
	if err != nil {
		return nil, err
	}
	if !official {
		if _, err := s.aliases.Ensure(ctx, userID); err != nil {
			return nil, err
		}
	}

	comment := models.PolicyComment{
		ID:              uuid.NewString(),
		PostID:          postID,
		UserID:          userID,
		ParentCommentID: parent,
		Content:         content,
		CreatedAt:       civictime.At(s.clock.Now()),
	}
	if err := s.store.Insert(ctx, &comment); err != nil {
		return nil, fmt.Errorf("services: insert comment: %w", err)
	}
	if err := s.audit.Record(ctx, userID, ActionAddPolicyComment, EntityPolicyComment, comment.ID); err != nil {
		log.Warn().Err(err).Str("comment_id", comment.ID).Msg("audit write failed")
	}

	out := &Added{Comment: comment}
	if s.model != nil && utils.MentionsAI(content) {
		reply, err := s.reply(ctx, *post, comment)
		if err != nil {
			log.Warn().Err(err).Str("comment_id", comment.ID).Msg("AI reply failed")
		} else {
			out.Reply = reply
		}
	}
	return out, nil
}

// isOfficial 作者是否是帖子所属选区（及选举）的代表
func (s *CommentService) isOfficial(ctx context.Context, post models.PolicyPost, userID string) (bool, error) {
	filter := store.Filter{"constituency_id": post.ConstituencyID, "user_id": userID}
	if post.ElectionID != "" {
		filter["election_id"] = post.ElectionID
	}
	reps, err := store.All[models.Representative](ctx, s.store, filter)
	if err != nil {
		return false, fmt.Errorf("services: load roster: %w", err)
	}
	return len(reps) > 0, nil
}

func (s *CommentService) reply(ctx context.Context, post models.PolicyPost, question models.PolicyComment) (*models.PolicyComment, error) {
	actx, cancel := context.WithTimeout(ctx, s.ai.Timeout)
	defer cancel()

	text, err := complete(actx, s.model, replyPrompt, map[string]any{
		"title":      post.Title,
		"statement":  post.RepresentativeStatement,
		"opposition": post.OppositionStatement,
		"question":   stripMention(question.Content),
	})
	if err != nil {
		return nil, err
	}

	parentID := question.ID
	reply := models.PolicyComment{
		ID:              uuid.NewString(),
		PostID:          post.ID,
		UserID:          s.ai.SystemUserID,
		ParentCommentID: &parentID,
		Content:         text,
		AIGenerated:     true,
		CreatedAt:       civictime.At(s.clock.Now()),
	}
	if err := s.store.Insert(ctx, &reply); err != nil {
		return nil, fmt.Errorf("services: insert AI reply: %w", err)
	}
	if err := s.audit.Record(ctx, s.ai.SystemUserID, ActionAIReply, EntityPolicyComment, reply.ID); err != nil {
		log.Warn().Err(err).Str("comment_id", reply.ID).Msg("audit write failed")
	}
	return &reply, nil
}
