// Package store 是引擎访问外部数据的唯一入口。
// 生产环境由 Postgres (gorm) 提供，测试和本地开发使用内存实现。
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("store: not found")

// Filter 按列名做等值过滤；值为 nil 表示 IS NULL
type Filter map[string]any

// Store 外部数据访问接口
type Store interface {
	// FetchAll 把满足条件的行按写入顺序装入 dest（指向切片的指针）
	FetchAll(ctx context.Context, dest any, filter Filter) error
	// FetchOne 装入第一条匹配行，没有时返回 ErrNotFound
	FetchOne(ctx context.Context, dest any, filter Filter) error
	Insert(ctx context.Context, value any) error
	// Update 按主键更新部分列，行不存在时返回 ErrNotFound
	Update(ctx context.Context, model any, id string, fields Filter) error
	Delete(ctx context.Context, model any, id string) error
	// Exclusive 在以 key 标识的独占区内执行 fn，fn 中的读写对同一 key 串行
	Exclusive(ctx context.Context, key string, fn func(tx Store) error) error
}

// All 泛型便捷封装
func All[T any](ctx context.Context, s Store, filter Filter) ([]T, error) {
	var out []T
	if err := s.FetchAll(ctx, &out, filter); err != nil {
		return nil, err
	}
	return out, nil
}

func One[T any](ctx context.Context, s Store, filter Filter) (*T, error) {
	var out T
	if err := s.FetchOne(ctx, &out, filter); err != nil {
		return nil, err
	}
	return &out, nil
}
