package rest

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultPoolSize число одновременных разбиений по умолчанию
	DefaultPoolSize = 4
	// DefaultAcquireTimeout сколько ждать свободного слота
	DefaultAcquireTimeout = 5 * time.Second
)

var (
	// ErrBusy все слоты заняты дольше таймаута ожидания
	ErrBusy = errors.New("timeout waiting for available slot")
	// ErrPoolClosed пул закрыт
	ErrPoolClosed = errors.New("pool is closed")
)

// SlotPool ограничивает число одновременных запусков конвейера
type SlotPool struct {
	slots   chan struct{}
	size    int
	timeout time.Duration
	mu      sync.Mutex
	closed  bool
	metrics *PoolMetrics
}

// PoolMetrics счётчики пула
type PoolMetrics struct {
	mu              sync.RWMutex
	inUse           int
	totalAcquired   int64
	totalReleased   int64
	acquireFailures int64
	waitTime        time.Duration
}

// MetricsSnapshot копия счётчиков пула для отдачи наружу
type MetricsSnapshot struct {
	PoolSize        int     `json:"pool_size"`
	InUse           int     `json:"slots_in_use"`
	TotalAcquired   int64   `json:"total_acquired"`
	TotalReleased   int64   `json:"total_released"`
	AcquireFailures int64   `json:"acquire_failures"`
	AvgWaitMillis   float64 `json:"avg_wait_ms"`
}

// NewSlotPool создаёт пул. size <= 0 и timeout <= 0 заменяются значениями по умолчанию.
func NewSlotPool(size int, timeout time.Duration) *SlotPool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	pool := &SlotPool{
		slots:   make(chan struct{}, size),
		size:    size,
		timeout: timeout,
		metrics: &PoolMetrics{},
	}
	for i := 0; i < size; i++ {
		pool.slots <- struct{}{}
	}
	return pool
}

// Acquire занимает слот. Возвращает ErrBusy по таймауту или ошибку ctx.
func (p *SlotPool) Acquire(ctx context.Context) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPoolClosed
	}

	start := time.Now()
	defer func() {
		p.metrics.mu.Lock()
		p.metrics.waitTime += time.Since(start)
		p.metrics.mu.Unlock()
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case _, ok := <-p.slots:
		if !ok {
			return ErrPoolClosed
		}
		p.metrics.mu.Lock()
		p.metrics.inUse++
		p.metrics.totalAcquired++
		p.metrics.mu.Unlock()
		return nil
	case <-timer.C:
		p.metrics.mu.Lock()
		p.metrics.acquireFailures++
		p.metrics.mu.Unlock()
		return ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release возвращает слот в пул
func (p *SlotPool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()

	if p.closed {
		return
	}
	p.slots <- struct{}{}
}

// Close закрывает пул, ожидающие Acquire получают ErrPoolClosed
func (p *SlotPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.slots)
}

// Metrics возвращает текущие счётчики
func (p *SlotPool) Metrics() MetricsSnapshot {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	snap := MetricsSnapshot{
		PoolSize:        p.size,
		InUse:           p.metrics.inUse,
		TotalAcquired:   p.metrics.totalAcquired,
		TotalReleased:   p.metrics.totalReleased,
		AcquireFailures: p.metrics.acquireFailures,
	}
	if attempts := p.metrics.totalAcquired + p.metrics.acquireFailures; attempts > 0 {
		snap.AvgWaitMillis = float64(p.metrics.waitTime.Milliseconds()) / float64(attempts)
	}
	return snap
}
