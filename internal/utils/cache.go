package utils

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem 包装缓存数据和过期时间
type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache 带 TTL 的本地 LRU 缓存
type Cache[V any] struct {
	lru *lru.Cache[string, cacheItem[V]]
	now func() time.Time
}

// NewCache 创建容量为 size 的缓存
func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lru: l, now: time.Now}, nil
}

// Set 设置缓存，ttl 为有效期
func (c *Cache[V]) Set(key string, data V, ttl time.Duration) {
	c.lru.Add(key, cacheItem[V]{data: data, expiresAt: c.now().Add(ttl)})
}

// Get 获取缓存，不存在或已过期时 ok 为 false
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(val.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return val.data, true
}

// Delete 删除指定缓存
func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
}

// DeletePrefix 删除所有以 prefix 开头的键
func (c *Cache[V]) DeletePrefix(prefix string) {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}
