// Package cache stores validation reports keyed by document content and
// catalog version.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/vl4dimr/tesis-system-unap/internal/types"
)

const keyPrefix = "docservice:reporte:"

// ReportCache stores validation reports. A miss is (nil, false, nil).
type ReportCache interface {
	Get(ctx context.Context, key string) (*types.ValidationReport, bool, error)
	Set(ctx context.Context, key string, report *types.ValidationReport) error
}

// Key derives the cache key of a document validated against a catalog.
// Validation is deterministic, so equal keys always map to equal reports.
func Key(document []byte, catalogFingerprint string) string {
	sum := sha256.Sum256(document)
	return keyPrefix + catalogFingerprint + ":" + hex.EncodeToString(sum[:])
}

// DefaultMaxEntries bounds a Memory cache created without an explicit size.
const DefaultMaxEntries = 10000

// Memory is an in-process ReportCache with per-entry expiry and a size cap.
// Expired entries are swept at most once per ttl; when the cache is full the
// oldest entry is evicted.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryEntry
	lastSweep  time.Time
	now        func() time.Time
}

type memoryEntry struct {
	report  *types.ValidationReport
	created time.Time
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// NewMemory returns a cache whose entries live for ttl (zero means forever)
// and which holds at most maxEntries reports.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryEntry),
		now:        time.Now,
	}
}

// Get implements ReportCache.
func (m *Memory) Get(_ context.Context, key string) (*types.ValidationReport, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return cloneReport(e.report), true, nil
}

// Set implements ReportCache.
func (m *Memory) Set(_ context.Context, key string, report *types.ValidationReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.ttl > 0 && now.Sub(m.lastSweep) >= m.ttl {
		m.cleanupExpired(now)
	}
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.cleanupExpired(now)
		if len(m.entries) >= m.maxEntries {
			m.evictOldest()
		}
	}

	e := memoryEntry{report: cloneReport(report), created: now}
	if m.ttl > 0 {
		e.expires = now.Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones not yet swept
// included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// cleanupExpired drops every expired entry. Callers hold mu.
func (m *Memory) cleanupExpired(now time.Time) {
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}

// evictOldest drops the entry stored first. Callers hold mu.
func (m *Memory) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range m.entries {
		if oldestKey == "" || e.created.Before(oldest) || (e.created.Equal(oldest) && key < oldestKey) {
			oldestKey, oldest = key, e.created
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

func cloneReport(r *types.ValidationReport) *types.ValidationReport {
	out := *r
	out.Findings = append([]types.Finding(nil), r.Findings...)
	return &out
}
