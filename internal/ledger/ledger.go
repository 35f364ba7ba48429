// Package ledger 实现“一人一票”的投票切换状态机。
//
// 对于同一 (subject, user)：
//
//	无票 --cast(v)--> 已投 v
//	已投 v --cast(v)--> 无票      （重复投同一票即撤销）
//	已投 v --cast(w)--> 已投 w    （原地改票）
//
// 得分始终是当前行的求和，不做增量维护。
package ledger

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidVoteValue = errors.New("ledger: invalid vote value")

// Transition 一次 Cast 造成的状态变化
type Transition string

const (
	Inserted Transition = "inserted"
	Removed  Transition = "removed"
	Switched Transition = "switched"
)

// Ballot 可进入账本的投票行
type Ballot interface {
	models.CommentVote | models.PolicyVote
	LedgerID() string
	LedgerUser() string
	LedgerValue() int
}

// Ledger 针对一种投票表的账本
type Ledger[T Ballot] struct {
	store   store.Store
	subject string
	newRow  func(id, subjectID, userID string, value int, at time.Time) T
	now     func() time.Time
}

// NewCommentLedger 评论投票账本
func NewCommentLedger(s store.Store) *Ledger[models.CommentVote] {
	return &Ledger[models.CommentVote]{
		store:   s,
		subject: "comment_id",
		newRow: func(id, subjectID, userID string, value int, at time.Time) models.CommentVote {
			return models.CommentVote{ID: id, CommentID: subjectID, UserID: userID, VoteValue: value, CreatedAt: civictime.At(at)}
		},
		now: time.Now,
	}
}

// NewPolicyLedger 政策帖投票账本
func NewPolicyLedger(s store.Store) *Ledger[models.PolicyVote] {
	return &Ledger[models.PolicyVote]{
		store:   s,
		subject: "post_id",
		newRow: func(id, subjectID, userID string, value int, at time.Time) models.PolicyVote {
			return models.PolicyVote{ID: id, PostID: subjectID, UserID: userID, VoteValue: value, CreatedAt: civictime.At(at)}
		},
		now: time.Now,
	}
}

// With 返回绑定到 s 的同一账本，用于在调用方的独占区内读写
func (l *Ledger[T]) With(s store.Store) *Ledger[T] {
	cp := *l
	cp.store = s
	return &cp
}

// ValidValue 只接受 +1 / -1
func ValidValue(v int) bool {
	return v == 1 || v == -1
}

// Cast 对 subject 投出 value，返回发生的状态变化。
// 校验在读写之前完成；读-改-写在 (subject, user) 粒度的独占区内进行。
func (l *Ledger[T]) Cast(ctx context.Context, subjectID, userID string, value int) (Transition, error) {
	if !ValidValue(value) {
		return "", fmt.Errorf("%w: %d (must be +1 or -1)", ErrInvalidVoteValue, value)
	}

	var result Transition
	key := l.subject + ":" + subjectID + ":" + userID
	err := l.store.Exclusive(ctx, key, func(tx store.Store) error {
		existing, err := store.One[T](ctx, tx, store.Filter{l.subject: subjectID, "user_id": userID})
		if errors.Is(err, store.ErrNotFound) {
			row := l.newRow(uuid.NewString(), subjectID, userID, value, l.now())
			if err := tx.Insert(ctx, &row); err != nil {
				return fmt.Errorf("ledger: insert vote: %w", err)
			}
			result = Inserted
			return nil
		}
		if err != nil {
			return fmt.Errorf("ledger: load vote: %w", err)
		}

		cur := *existing
		var model T
		if cur.LedgerValue() == value {
			if err := tx.Delete(ctx, &model, cur.LedgerID()); err != nil {
				return fmt.Errorf("ledger: remove vote: %w", err)
			}
			result = Removed
			return nil
		}
		if err := tx.Update(ctx, &model, cur.LedgerID(), store.Filter{"vote_value": value}); err != nil {
			return fmt.Errorf("ledger: switch vote: %w", err)
		}
		result = Switched
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// Rows 返回 subject 的全部当前投票
func (l *Ledger[T]) Rows(ctx context.Context, subjectID string) ([]T, error) {
	rows, err := store.All[T](ctx, l.store, store.Filter{l.subject: subjectID})
	if err != nil {
		return nil, fmt.Errorf("ledger: load votes: %w", err)
	}
	return rows, nil
}

// Score 当前净得分
func (l *Ledger[T]) Score(ctx context.Context, subjectID string) (int, error) {
	rows, err := l.Rows(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	return Sum(rows), nil
}

// Tally 赞成与反对票数
func (l *Ledger[T]) Tally(ctx context.Context, subjectID string) (up, down int, err error) {
	rows, err := l.Rows(ctx, subjectID)
	if err != nil {
		return 0, 0, err
	}
	for _, r := range rows {
		if r.LedgerValue() > 0 {
			up++
		} else {
			down++
		}
	}
	return up, down, nil
}

// Vote 返回 user 当前的票，没有投票时返回 nil
func (l *Ledger[T]) Vote(ctx context.Context, subjectID, userID string) (*int, error) {
	existing, err := store.One[T](ctx, l.store, store.Filter{l.subject: subjectID, "user_id": userID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: load vote: %w", err)
	}
	v := (*existing).LedgerValue()
	return &v, nil
}

// Sum 对投票行求和
func Sum[T Ballot](rows []T) int {
	total := 0
	for _, r := range rows {
		total += r.LedgerValue()
	}
	return total
}

// ValueOf 在 rows 中查找 user 的票
func ValueOf[T Ballot](rows []T, userID string) *int {
	if userID == "" {
		return nil
	}
	for _, r := range rows {
		if r.LedgerUser() == userID {
			v := r.LedgerValue()
			return &v
		}
	}
	return nil
}
