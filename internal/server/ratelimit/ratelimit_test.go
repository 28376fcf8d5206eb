package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vl4dimr/tesis-system-unap/internal/config"
)

func TestBucket_Take(t *testing.T) {
	b := newBucket(3, 1)
	now := time.Now()

	for i := 0; i < 3; i++ {
		allowed, _, _ := b.take(now)
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, remaining, reset := b.take(now)
	if allowed {
		t.Error("fourth request should be denied")
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}
	if !reset.After(now) {
		t.Error("reset time should be in the future for an empty bucket")
	}
}

func TestBucket_Refill(t *testing.T) {
	b := newBucket(2, 10) // 10 tokens per second
	now := time.Now()

	b.take(now)
	b.take(now)
	if allowed, _, _ := b.take(now); allowed {
		t.Fatal("bucket should be empty")
	}

	later := now.Add(150 * time.Millisecond)
	if allowed, _, _ := b.take(later); !allowed {
		t.Error("bucket should have refilled at least one token")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  5,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/reglas", "GET")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if info.Limit != 5 {
			t.Errorf("expected limit 5, got %d", info.Limit)
		}
	}

	allowed, info := limiter.Allow("10.0.0.1", "/reglas", "GET")
	if allowed {
		t.Error("sixth request should be denied")
	}
	if info.RetryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %v", info.RetryAfter)
	}

	// Other clients keep their own bucket
	if allowed, _ := limiter.Allow("10.0.0.2", "/reglas", "GET"); !allowed {
		t.Error("different client should be allowed")
	}
}

func TestLimiter_WhitelistBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"good": true},
		Blacklist:     map[string]bool{"bad": true},
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("good", "/validar", "POST"); !allowed {
			t.Fatal("whitelisted client should never be limited")
		}
	}
	if allowed, _ := limiter.Allow("bad", "/validar", "POST"); allowed {
		t.Error("blacklisted client should always be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow("10.0.0.1", "/formatear", "POST"); !allowed {
			t.Fatal("disabled limiter should allow everything")
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	// /formatear bursts to 5
	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("c", "/formatear", "POST"); !allowed {
			t.Fatalf("format request %d should be allowed", i+1)
		}
	}
	allowed, info := limiter.Allow("c", "/formatear", "POST")
	if allowed {
		t.Error("format burst should be exhausted")
	}
	if info.Limit != 30 {
		t.Errorf("expected format limit 30, got %d", info.Limit)
	}

	// Validation has its own bucket
	if allowed, _ := limiter.Allow("c", "/validar", "POST"); !allowed {
		t.Error("validation should not share the format bucket")
	}

	// Prefix match groups report lookups into one bucket
	limiter.Allow("c", "/reportes/a", "GET")
	limiter.Allow("c", "/reportes/b", "GET")
	if got := limiter.Len(); got != 3 {
		t.Errorf("expected 3 buckets, got %d", got)
	}
}

func TestLimiter_UnlimitedProbes(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for _, path := range []string{"/health", "/metrics"} {
		for i := 0; i < 20; i++ {
			if allowed, _ := limiter.Allow("c", path, "GET"); !allowed {
				t.Fatalf("%s should be unlimited", path)
			}
		}
	}
	if got := limiter.Len(); got != 0 {
		t.Errorf("unlimited endpoints should not allocate buckets, got %d", got)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  50,
		DefaultWindow: time.Hour,
	})
	defer limiter.Stop()

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("shared", "/validar", "POST"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowedCount.Load(); got != 50 {
		t.Errorf("expected exactly 50 allowed requests, got %d", got)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("client-%d", i), "/validar", "POST")
	}
	if got := limiter.Len(); got != 5 {
		t.Fatalf("expected 5 buckets, got %d", got)
	}

	limiter.cleanupBuckets(time.Now().Add(time.Second))
	if got := limiter.Len(); got != 0 {
		t.Errorf("expected all buckets removed, got %d", got)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	if allowed, info := limiter.Allow("c", "/validar", "POST"); !allowed || info.Limit != 1000 {
		t.Errorf("expected default limit 1000, got allowed=%v limit=%d", allowed, info.Limit)
	}
}

func TestNewConfig(t *testing.T) {
	settings := config.Defaults().RateLimit
	settings.DefaultLimit = 2
	settings.Blacklist = []string{"10.0.0.9"}

	cfg := NewConfig(settings)
	if !cfg.Enabled || cfg.DefaultLimit != 2 || cfg.DefaultWindow != time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Blacklist["10.0.0.9"] || len(cfg.Whitelist) != 0 {
		t.Errorf("unexpected address lists: white=%v black=%v", cfg.Whitelist, cfg.Blacklist)
	}
	if len(cfg.EndpointConfigs) != len(DefaultEndpointConfigs()) {
		t.Errorf("expected default endpoint limits, got %d", len(cfg.EndpointConfigs))
	}

	limiter := NewLimiter(cfg)
	defer limiter.Stop()
	if allowed, _ := limiter.Allow("10.0.0.9", "/config", "GET"); allowed {
		t.Error("blacklisted client should be denied")
	}

	settings.Enabled = false
	if NewConfig(settings).Enabled {
		t.Error("disabled settings should yield a disabled limiter")
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{"/validar", "POST", "/validar", false},
		{"/formatear", "POST", "/formatear", false},
		{"/reportes/123", "GET", "/reportes/", false},
		{"/validar", "GET", "", true},
		{"/health", "GET", "/health", false},
	}
	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		if tt.wantNil {
			if got != nil {
				t.Errorf("%s %s: expected no match, got %+v", tt.method, tt.path, got)
			}
			continue
		}
		if got == nil || got.Path != tt.wantPath {
			t.Errorf("%s %s: expected %s, got %+v", tt.method, tt.path, tt.wantPath, got)
		}
	}
}
