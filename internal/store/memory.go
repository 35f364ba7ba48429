package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

// MemoryStore 内存实现，按 gorm 的 schema 解析表名和列名，
// 因此与 GormStore 使用同一套模型和过滤条件。
type MemoryStore struct {
	mu      sync.RWMutex
	tables  map[string][]reflect.Value
	schemas sync.Map
	locks   keyedMutex

	faultMu  sync.RWMutex
	failures map[string]error
	delays   map[string]time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:   make(map[string][]reflect.Value),
		failures: make(map[string]error),
		delays:   make(map[string]time.Duration),
	}
}

// FailOn 让对 table 的所有读取返回 err，传 nil 取消
func (m *MemoryStore) FailOn(table string, err error) {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()
	if err == nil {
		delete(m.failures, table)
		return
	}
	m.failures[table] = err
}

// Delay 让对 table 的读取延迟 d，遵守 ctx 取消
func (m *MemoryStore) Delay(table string, d time.Duration) {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()
	if d <= 0 {
		delete(m.delays, table)
		return
	}
	m.delays[table] = d
}

func (m *MemoryStore) intercept(ctx context.Context, table string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.faultMu.RLock()
	err, failing := m.failures[table]
	delay := m.delays[table]
	m.faultMu.RUnlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if failing {
		return fmt.Errorf("store: %s: %w", table, err)
	}
	return nil
}

func (m *MemoryStore) schemaOf(model any) (*schema.Schema, error) {
	return schema.Parse(model, &m.schemas, schema.NamingStrategy{})
}

func (m *MemoryStore) FetchAll(ctx context.Context, dest any, filter Filter) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: FetchAll needs a pointer to a slice, got %T", dest)
	}
	sliceType := rv.Elem().Type()
	sch, err := m.schemaOf(reflect.New(sliceType.Elem()).Interface())
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := m.intercept(ctx, sch.Table); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := reflect.MakeSlice(sliceType, 0, 0)
	for _, row := range m.tables[sch.Table] {
		ok, err := matches(ctx, sch, row, filter)
		if err != nil {
			return err
		}
		if ok {
			out = reflect.Append(out, row)
		}
	}
	rv.Elem().Set(out)
	return nil
}

func (m *MemoryStore) FetchOne(ctx context.Context, dest any, filter Filter) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("store: FetchOne needs a pointer to a struct, got %T", dest)
	}
	sch, err := m.schemaOf(dest)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := m.intercept(ctx, sch.Table); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.tables[sch.Table] {
		ok, err := matches(ctx, sch, row, filter)
		if err != nil {
			return err
		}
		if ok {
			rv.Elem().Set(row)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Insert(ctx context.Context, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("store: Insert needs a struct, got %T", value)
	}
	sch, err := m.schemaOf(value)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	row := reflect.New(rv.Type()).Elem()
	row.Set(rv)

	m.mu.Lock()
	defer m.mu.Unlock()
	if pk := sch.PrioritizedPrimaryField; pk != nil {
		id := pk.ReflectValueOf(ctx, row).Interface()
		for _, existing := range m.tables[sch.Table] {
			if pk.ReflectValueOf(ctx, existing).Interface() == id {
				return fmt.Errorf("store: insert %s: duplicate primary key %v", sch.Table, id)
			}
		}
	}
	m.tables[sch.Table] = append(m.tables[sch.Table], row)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, model any, id string, fields Filter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sch, err := m.schemaOf(model)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.indexOf(ctx, sch, id)
	if err != nil {
		return err
	}
	row := m.tables[sch.Table][i]
	for col, val := range fields {
		f := sch.LookUpField(col)
		if f == nil {
			return fmt.Errorf("store: unknown column %q on %s", col, sch.Table)
		}
		if err := f.Set(ctx, row, val); err != nil {
			return fmt.Errorf("store: update %s.%s: %w", sch.Table, col, err)
		}
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, model any, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sch, err := m.schemaOf(model)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.indexOf(ctx, sch, id)
	if err != nil {
		return err
	}
	rows := m.tables[sch.Table]
	m.tables[sch.Table] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

// Exclusive 同一 key 串行，不同 key 并行
func (m *MemoryStore) Exclusive(ctx context.Context, key string, fn func(tx Store) error) error {
	unlock := m.locks.lock(key)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(m)
}

func (m *MemoryStore) indexOf(ctx context.Context, sch *schema.Schema, id string) (int, error) {
	pk := sch.PrioritizedPrimaryField
	if pk == nil {
		return -1, fmt.Errorf("store: %s has no primary key", sch.Table)
	}
	for i, row := range m.tables[sch.Table] {
		if fmt.Sprint(pk.ReflectValueOf(ctx, row).Interface()) == id {
			return i, nil
		}
	}
	return -1, ErrNotFound
}

func matches(ctx context.Context, sch *schema.Schema, row reflect.Value, filter Filter) (bool, error) {
	for col, want := range filter {
		f := sch.LookUpField(col)
		if f == nil {
			return false, fmt.Errorf("store: unknown column %q on %s", col, sch.Table)
		}
		if !sameValue(f.ReflectValueOf(ctx, row), want) {
			return false, nil
		}
	}
	return true, nil
}

func sameValue(got reflect.Value, want any) bool {
	if got.Kind() == reflect.Pointer {
		if got.IsNil() {
			return want == nil
		}
		got = got.Elem()
	}
	if want == nil {
		return false
	}
	if w := reflect.ValueOf(want); w.Kind() == reflect.Pointer {
		if w.IsNil() {
			return false
		}
		want = w.Elem().Interface()
	}
	return fmt.Sprint(got.Interface()) == fmt.Sprint(want)
}

// keyedMutex 按 key 加锁，无人持有时回收
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
