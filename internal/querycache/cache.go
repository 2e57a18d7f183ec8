// Package querycache coalesces and memoizes content loads by key.
//
// Each key moves through absent → pending → resolved|rejected. While a key is
// pending every caller shares the one in-flight load. Settled entries,
// including rejections, are served from memory until the key is invalidated;
// there is no TTL and no background refresh.
package querycache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/singleflight"

	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
)

// Key identifies one logical query, e.g. "projects".
type Key string

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusAbsent Status = iota
	StatusPending
	StatusResolved
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusRejected:
		return "rejected"
	default:
		return "absent"
	}
}

// Snapshot is the observable state of one key.
type Snapshot struct {
	Key    Key
	Status Status
	Value  any
	Err    error
}

// Settled reports whether the load for this key has finished.
func (s Snapshot) Settled() bool {
	return s.Status == StatusResolved || s.Status == StatusRejected
}

// Loader fetches the value for a key.
type Loader func(ctx context.Context) (any, error)

// RetryPolicy configures bounded retries with exponential backoff. A policy
// with MaxAttempts of 0 or 1 runs the loader exactly once.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Options configures a Cache.
type Options struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	LoadTimeout time.Duration
	Retry       RetryPolicy
}

type entry struct {
	status Status
	value  any
	err    error
}

func (e *entry) settled() bool {
	return e.status == StatusResolved || e.status == StatusRejected
}

// Cache is a keyed, coalescing result cache. The zero value is not usable;
// construct with New.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	subs    map[Key]map[uint64]chan Snapshot
	nextSub uint64
	group   singleflight.Group

	logger      *slog.Logger
	metrics     *metrics.Metrics
	loadTimeout time.Duration
	retry       RetryPolicy
}

// New creates an empty cache.
func New(opts Options) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &Cache{
		entries:     make(map[Key]*entry),
		subs:        make(map[Key]map[uint64]chan Snapshot),
		logger:      logger.With("component", "querycache"),
		metrics:     m,
		loadTimeout: opts.LoadTimeout,
		retry:       opts.Retry,
	}
}

// Get returns the settled value for key, running load if the key has never
// been requested. Callers arriving while a load is pending wait for that same
// load. Cancelling ctx abandons this caller's wait only; the shared load keeps
// running and its result is still stored.
func (c *Cache) Get(ctx context.Context, key Key, load Loader) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.settled() {
		value, err := e.value, e.err
		c.mu.Unlock()
		c.metrics.CacheRequests.WithLabelValues(string(key), "hit").Inc()
		return value, err
	}
	result := "coalesced"
	if !ok {
		e = &entry{status: StatusPending}
		c.entries[key] = e
		c.notifyLocked(key, e)
		result = "miss"
	}
	c.mu.Unlock()
	c.metrics.CacheRequests.WithLabelValues(string(key), result).Inc()

	ch := c.group.DoChan(string(key), func() (any, error) {
		return c.load(ctx, key, e, load)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

// Refetch drops any stored state for key and loads it again.
func (c *Cache) Refetch(ctx context.Context, key Key, load Loader) (any, error) {
	c.Invalidate(key)
	return c.Get(ctx, key, load)
}

// Peek returns the last known state for key without triggering a load.
func (c *Cache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(key)
}

// Invalidate forgets key. A load still in flight for it finishes for its
// current waiters but its result is discarded.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.group.Forget(string(key))
	c.notifyLocked(key, nil)
	c.logger.Debug("invalidated", "key", key)
}

// InvalidateAll forgets every key and returns the keys that were dropped.
func (c *Cache) InvalidateAll() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
		delete(c.entries, key)
		c.group.Forget(string(key))
		c.notifyLocked(key, nil)
	}
	return keys
}

// Subscribe returns a channel that receives the current snapshot for key and
// then every subsequent state change. Slow readers only see the latest state.
// The returned func unsubscribes and closes the channel.
func (c *Cache) Subscribe(key Key) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.subs[key] == nil {
		c.subs[key] = make(map[uint64]chan Snapshot)
	}
	c.subs[key][id] = ch
	ch <- c.snapshotLocked(key)
	c.mu.Unlock()

	cancel := sync.OnceFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[key], id)
		if len(c.subs[key]) == 0 {
			delete(c.subs, key)
		}
		close(ch)
	})
	return ch, cancel
}

func (c *Cache) load(ctx context.Context, key Key, e *entry, load Loader) (any, error) {
	// A flight can start after an earlier one already settled e.
	c.mu.Lock()
	if e.settled() {
		value, err := e.value, e.err
		c.mu.Unlock()
		return value, err
	}
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}

	start := time.Now()
	value, err := c.run(ctx, key, load)
	elapsed := time.Since(start)
	c.metrics.CacheLoadDuration.WithLabelValues(string(key)).Observe(elapsed.Seconds())

	c.mu.Lock()
	if err != nil {
		e.status, e.value, e.err = StatusRejected, nil, err
	} else {
		e.status, e.value, e.err = StatusResolved, value, nil
	}
	current := c.entries[key] == e
	if current {
		c.notifyLocked(key, e)
	}
	c.mu.Unlock()

	if err != nil {
		c.metrics.CacheLoads.WithLabelValues(string(key), "rejected").Inc()
		c.logger.Warn("load failed", "key", key, "error", err, "duration", elapsed)
	} else {
		c.metrics.CacheLoads.WithLabelValues(string(key), "resolved").Inc()
		c.logger.Debug("loaded", "key", key, "duration", elapsed, "stored", current)
	}
	return value, err
}

func (c *Cache) run(ctx context.Context, key Key, load Loader) (any, error) {
	if c.retry.MaxAttempts <= 1 {
		return load(ctx)
	}

	b := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		b.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		b.MaxInterval = c.retry.MaxInterval
	}

	return backoff.Retry(ctx, func() (any, error) {
		return load(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.retry.MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Info("retrying load", "key", key, "error", err, "wait", wait)
		}),
	)
}

func (c *Cache) snapshotLocked(key Key) Snapshot {
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Key: key, Status: StatusAbsent}
	}
	return Snapshot{Key: key, Status: e.status, Value: e.value, Err: e.err}
}

func (c *Cache) notifyLocked(key Key, e *entry) {
	subs := c.subs[key]
	if len(subs) == 0 {
		return
	}
	snap := Snapshot{Key: key, Status: StatusAbsent}
	if e != nil {
		snap = Snapshot{Key: key, Status: e.status, Value: e.value, Err: e.err}
	}
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so the newest one is delivered.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
