package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry hands out one Guard per key, e.g. "<user>:<target>".
type Registry struct {
	mu     sync.Mutex
	opts   Options
	guards map[string]*entry
}

// entry tracks who is using a guard so Sweep never drops one mid-confirm.
type entry struct {
	g       *Guard
	pins    int
	touched time.Time
}

func NewRegistry(opts Options) *Registry {
	if opts.CoolDown <= 0 {
		opts.CoolDown = DefaultCoolDown
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	return &Registry{opts: opts, guards: make(map[string]*entry)}
}

func (r *Registry) CoolDown() time.Duration { return r.opts.CoolDown }

func (r *Registry) lookupLocked(key string) *entry {
	e, ok := r.guards[key]
	if !ok {
		e = &entry{g: New(r.opts)}
		r.guards[key] = e
	}
	e.touched = r.opts.Clock.Now()
	return e
}

// Guard returns the guard for key. It survives Sweep for at least one
// cool-down after this call; use Confirm to hold it for a whole attempt.
func (r *Registry) Guard(key string) *Guard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(key).g
}

// Confirm runs one attempt on the guard for key, keeping it registered until
// the attempt returns.
func (r *Registry) Confirm(ctx context.Context, key string, p Payload, submit SubmitFunc) Outcome {
	r.mu.Lock()
	e := r.lookupLocked(key)
	e.pins++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		e.pins--
		e.touched = r.opts.Clock.Now()
		r.mu.Unlock()
	}()
	return e.g.Confirm(ctx, false, p, submit)
}

// Forget closes and drops the guard for key.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	e, ok := r.guards[key]
	delete(r.guards, key)
	r.mu.Unlock()
	if ok {
		e.g.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.guards)
}

// Sweep drops idle, unpinned guards that have not been used or submitted
// through for a whole cool-down.
func (r *Registry) Sweep() int {
	now := r.opts.Clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, e := range r.guards {
		if e.pins > 0 || now.Sub(e.touched) < r.opts.CoolDown {
			continue
		}
		s := e.g.Snapshot()
		if s.State != Idle {
			continue
		}
		if s.LastSubmission.IsZero() || now.Sub(s.LastSubmission) >= r.opts.CoolDown {
			delete(r.guards, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps the registry every interval until ctx is done.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(); n > 0 && logger != nil {
					logger.Debug("Swept idle booking guards", "removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Locker is a cross-instance submission lock that expires on its own.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SetNXer is the one redis command the locker needs. *redis.Client satisfies it.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	rdb    SetNXer
	prefix string
}

// NewRedisLocker returns a locker that always allows when rdb is nil.
func NewRedisLocker(rdb *redis.Client, prefix string) *RedisLocker {
	if rdb == nil {
		return newLocker(nil, prefix)
	}
	return newLocker(rdb, prefix)
}

func newLocker(rdb SetNXer, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "booking-guard"
	}
	return &RedisLocker{rdb: rdb, prefix: prefix}
}

func (l *RedisLocker) Key(key string) string {
	return l.prefix + ":" + key
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	return l.rdb.SetNX(ctx, l.Key(key), time.Now().UnixMilli(), ttl).Result()
}
