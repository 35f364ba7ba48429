package services

import (
	"civicpulse/internal/civictime"
	"civicpulse/internal/models"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BriefGenerator BriefQueue 需要的简报能力
type BriefGenerator interface {
	Generate(ctx context.Context, constituencyID, requestedBy string) (*models.ConstituencyBrief, error)
	Constituencies(ctx context.Context) ([]string, error)
}

// BriefQueue 异步刷新选区简报，短时间内重复的请求只处理一次
type BriefQueue struct {
	briefs    BriefGenerator
	queue     chan string // 待刷新的选区 ID
	pending   map[string]bool
	mu        sync.Mutex
	batchSize int
	interval  time.Duration
	processed func(constituencyID string, err error) // 测试钩子
}

func NewBriefQueue(briefs BriefGenerator) *BriefQueue {
	return &BriefQueue{
		briefs:    briefs,
		queue:     make(chan string, 256), // 缓冲队列，防止阻塞请求
		pending:   make(map[string]bool),
		batchSize: 16,
		interval:  500 * time.Millisecond,
	}
}

// Start 启动后台 worker，ctx 取消后退出
func (q *BriefQueue) Start(ctx context.Context) {
	go q.worker(ctx)
}

// Schedule 将选区加入刷新队列（非阻塞）。已在队列中或队列已满时返回 false。
func (q *BriefQueue) Schedule(constituencyID string) bool {
	q.mu.Lock()
	if q.pending[constituencyID] {
		q.mu.Unlock()
		return false
	}
	q.pending[constituencyID] = true
	q.mu.Unlock()

	select {
	case q.queue <- constituencyID:
		return true
	default:
		q.mu.Lock()
		delete(q.pending, constituencyID)
		q.mu.Unlock()
		log.Warn().Str("constituency_id", constituencyID).Msg("brief queue full, skipping")
		return false
	}
}

func (q *BriefQueue) worker(ctx context.Context) {
	batch := make([]string, 0, q.batchSize)
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.queue:
			batch = append(batch, id)
			if len(batch) >= q.batchSize {
				q.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				q.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (q *BriefQueue) processBatch(ctx context.Context, ids []string) {
	for _, id := range ids {
		_, err := q.briefs.Generate(ctx, id, "")
		if err != nil {
			log.Warn().Err(err).Str("constituency_id", id).Msg("brief refresh failed")
		}

		q.mu.Lock()
		delete(q.pending, id)
		q.mu.Unlock()
		if q.processed != nil {
			q.processed(id, err)
		}
	}
}

// StartDailyRefresh 每天 hour 点（公民时区）把所有已有简报的选区加入队列
func (q *BriefQueue) StartDailyRefresh(ctx context.Context, clock civictime.Clock, hour int) {
	go func() {
		for {
			wait := time.Until(nextRun(clock.Now(), hour))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			log.Info().Msg("daily brief refresh starting")
			q.refreshAll(ctx)
		}
	}()
}

func (q *BriefQueue) refreshAll(ctx context.Context) int {
	ids, err := q.briefs.Constituencies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("daily brief refresh: list constituencies")
		return 0
	}
	n := 0
	for _, id := range ids {
		if q.Schedule(id) {
			n++
		}
	}
	log.Info().Int("scheduled", n).Msg("daily brief refresh queued")
	return n
}

// nextRun now 之后的下一个 hour:00
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
