package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormStore 基于 gorm 的实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) query(ctx context.Context, dest any, filter Filter) *gorm.DB {
	q := s.db.WithContext(ctx)
	if len(filter) > 0 {
		q = q.Where(map[string]any(filter))
	}
	// 保持写入顺序，评论树和排名的稳定性依赖它
	if s.hasColumn(dest, "created_at") {
		q = q.Order("created_at ASC")
	}
	return q
}

func (s *GormStore) hasColumn(dest any, column string) bool {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(dest); err != nil {
		return false
	}
	return stmt.Schema.LookUpField(column) != nil
}

func (s *GormStore) FetchAll(ctx context.Context, dest any, filter Filter) error {
	if err := s.query(ctx, dest, filter).Find(dest).Error; err != nil {
		return fmt.Errorf("store: fetch all: %w", err)
	}
	return nil
}

func (s *GormStore) FetchOne(ctx context.Context, dest any, filter Filter) error {
	err := s.query(ctx, dest, filter).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: fetch one: %w", err)
	}
	return nil
}

func (s *GormStore) Insert(ctx context.Context, value any) error {
	if err := s.db.WithContext(ctx).Create(value).Error; err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

func (s *GormStore) Update(ctx context.Context, model any, id string, fields Filter) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]any(fields))
	if res.Error != nil {
		return fmt.Errorf("store: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, model any, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("store: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exclusive 在事务中先获取事务级 advisory lock，锁在提交或回滚时释放。
// 不同 key 之间互不阻塞。
func (s *GormStore) Exclusive(ctx context.Context, key string, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error; err != nil {
			return fmt.Errorf("store: advisory lock %q: %w", key, err)
		}
		return fn(&GormStore{db: tx})
	})
}
