package services

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/store"
	"civicpulse/internal/utils"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// AliasService 为公民分配匿名显示名
type AliasService struct {
	store    store.Store
	clock    civictime.Clock
	generate func() string
}

func NewAliasService(s store.Store, clock civictime.Clock) *AliasService {
	return &AliasService{store: s, clock: clock, generate: utils.RandomAlias}
}

// Ensure 返回用户的别名，不存在时创建。已有别名永不重新生成。
func (a *AliasService) Ensure(ctx context.Context, userID string) (*models.CitizenAlias, error) {
	var alias *models.CitizenAlias
	err := a.store.Exclusive(ctx, "alias:"+userID, func(tx store.Store) error {
		existing, err := store.One[models.CitizenAlias](ctx, tx, store.Filter{"user_id": userID})
		if err == nil {
			alias = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		created := &models.CitizenAlias{
			ID:             uuid.NewString(),
			UserID:         userID,
			RandomUsername: a.generate(),
			CreatedAt:      a.clock.Now(),
		}
		if err := tx.Insert(ctx, created); err != nil {
			return err
		}
		alias = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("alias: ensure %s: %w", userID, err)
	}
	return alias, nil
}
