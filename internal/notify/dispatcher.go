package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	pkgLog "ai-task-orchestrator/pkg/log"
)

const queueDepth = 64

// Dispatcher queues notifications and delivers them on a single worker,
// rate-limited per recipient so a chatty session cannot flood a user.
type Dispatcher struct {
	l        pkgLog.Logger
	notifier Notifier
	limiter  *userLimiter
	queue    chan Notification
	stop     chan struct{}

	closeOnce sync.Once
}

// NewDispatcher starts the delivery worker. ratePerMinute bounds notices per
// user; zero or negative falls back to 10.
func NewDispatcher(l pkgLog.Logger, notifier Notifier, ratePerMinute int) *Dispatcher {
	if ratePerMinute <= 0 {
		ratePerMinute = 10
	}
	d := &Dispatcher{
		l:        l,
		notifier: notifier,
		limiter:  newUserLimiter(ratePerMinute),
		queue:    make(chan Notification, queueDepth),
		stop:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue hands a notification to the worker. A full queue drops the
// notification with a warning rather than blocking the caller.
func (d *Dispatcher) Enqueue(ctx context.Context, n Notification) {
	select {
	case <-d.stop:
		return
	default:
	}

	select {
	case d.queue <- n:
	default:
		d.l.Warnf(ctx, "Notification queue full, dropping notice for user %s", n.UserID)
	}
}

// Close stops the delivery worker. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.stop) })
}

func (d *Dispatcher) run() {
	for {
		select {
		case <-d.stop:
			return
		case n := <-d.queue:
			d.deliver(n)
		}
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx := context.Background()

	if err := d.limiter.Allow(n.UserID); err != nil {
		d.l.Warnf(ctx, "Dropping notification for user %s: %v", n.UserID, err)
		return
	}
	if err := d.notifier.Send(ctx, n); err != nil {
		d.l.Errorf(ctx, "Failed to deliver notification to user %s: %v", n.UserID, err)
	}
}

// userLimiter keeps one token bucket per recipient with auto-cleanup.
type userLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newUserLimiter(perMinute int) *userLimiter {
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](
			1000,
			nil,
			time.Minute*5,
		),
		rate:  rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
	}
}

func (ul *userLimiter) Allow(userID string) error {
	limiter, ok := ul.limiters.Get(userID)
	if !ok {
		limiter = rate.NewLimiter(ul.rate, ul.burst)
		ul.limiters.Add(userID, limiter)
	}

	if !limiter.Allow() {
		return fmt.Errorf("notification rate limit exceeded for %s", userID)
	}
	return nil
}
