// Package ratelimit limits expensive API calls per client with token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client and endpoint.
type Limiter struct {
	mu      sync.Mutex
	config  *Config
	clients map[string]*client
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter and starts its cleanup loop. Call Stop to end it.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{Enabled: true, Rules: DefaultRules(DefaultAnalysesPerHour)}
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultIdleTTL
	}

	l := &Limiter{
		config:  config,
		clients: make(map[string]*client),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow consumes a token for clientID on the endpoint and reports whether the
// request may proceed.
func (l *Limiter) Allow(clientID, method, path string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	rule := Match(method, path, l.config.Rules)
	if rule == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	c := l.client(clientID+" "+method+" "+path, rule, now)

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, Info{Limit: rule.Limit}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, Info{Limit: rule.Limit, RetryAfter: delay}
	}
	return true, Info{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: max(0, int(c.limiter.TokensAt(now))),
	}
}

func (l *Limiter) client(key string, rule *Rule, now time.Time) *client {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		burst := rule.Burst
		if burst <= 0 {
			burst = rule.Limit
		}
		every := rule.Window / time.Duration(rule.Limit)
		c = &client{limiter: rate.NewLimiter(rate.Every(every), burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupIdle()
		case <-l.stop:
			return
		}
	}
}

// cleanupIdle forgets clients not seen within IdleTTL.
func (l *Limiter) cleanupIdle() {
	cutoff := l.now().Add(-l.config.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
