package snapshot

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"civicpulse/internal/signals"
	"civicpulse/internal/store"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Options 快照生成参数
type Options struct {
	FetchTimeout    time.Duration // 单次外部读取的超时
	Concurrency     int           // 条目级读取的最大并发
	TermHorizonDays int
	TrendingLimit   int
	BacklashLimit   int
	SupportLimit    int
}

func DefaultOptions() Options {
	return Options{
		FetchTimeout:    3 * time.Second,
		Concurrency:     8,
		TermHorizonDays: signals.DefaultTermHorizonDays,
		TrendingLimit:   5,
		BacklashLimit:   3,
		SupportLimit:    3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.TermHorizonDays < 0 {
		o.TermHorizonDays = d.TermHorizonDays
	}
	if o.TrendingLimit <= 0 {
		o.TrendingLimit = d.TrendingLimit
	}
	if o.BacklashLimit <= 0 {
		o.BacklashLimit = d.BacklashLimit
	}
	if o.SupportLimit <= 0 {
		o.SupportLimit = d.SupportLimit
	}
	return o
}

// Composer 无状态的快照生成器，可被多个请求并发使用
type Composer struct {
	store    store.Store
	clock    civictime.Clock
	opts     Options
	failures atomic.Int64
}

func NewComposer(s store.Store, clock civictime.Clock, opts Options) *Composer {
	return &Composer{store: s, clock: clock, opts: opts.withDefaults()}
}

// Failures 累计被吸收的外部读取失败次数
func (c *Composer) Failures() int64 {
	return c.failures.Load()
}

func (c *Composer) Clock() civictime.Clock {
	return c.clock
}

// Compose 以当前时刻生成快照
func (c *Composer) Compose(ctx context.Context, constituencyID string) (*Snapshot, error) {
	return c.ComposeAt(ctx, constituencyID, c.clock.Now())
}

// ComposeAt 以 now 生成快照，“今天”只在这里计算一次并传给所有评分。
// 外部读取失败会降级为空列表，不会返回错误；只有调用方取消 ctx 时才返回 ctx.Err()，
// 此时附带的快照为空，调用方应当丢弃。
func (c *Composer) ComposeAt(ctx context.Context, constituencyID string, now time.Time) (*Snapshot, error) {
	loc := c.clock.Location()
	today := civictime.DayOf(now, loc)

	r := &run{c: c, constituencyID: constituencyID}
	in := r.gather(ctx)
	if err := ctx.Err(); err != nil {
		return Empty(constituencyID, now, today), err
	}

	snap := assemble(constituencyID, now, today, loc, c.opts, in)
	snap.Meta.Degraded = r.degradedList()
	log.Debug().
		Str("constituency_id", constituencyID).
		Str("civic_day", today.String()).
		Stringer("inputs", in).
		Int("degraded", len(snap.Meta.Degraded)).
		Msg("snapshot composed")
	return snap, nil
}

// TermsEnding 单独查询任期将在 horizonDays 天内结束的代表
func (c *Composer) TermsEnding(ctx context.Context, constituencyID string, horizonDays int) ([]TermSignal, error) {
	reps, err := store.All[models.Representative](ctx, c.store, store.Filter{"constituency_id": constituencyID})
	if err != nil {
		return nil, fmt.Errorf("snapshot: load representatives: %w", err)
	}
	return termSignals(signals.ExpiringWithin(reps, c.clock.Today(), horizonDays, c.clock.Location())), nil
}
