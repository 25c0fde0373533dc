// Package chat provides the bounded, timestamped event log rendered as the
// console overlay. Append-only with FIFO eviction once capacity is reached.
package chat

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind classifies a log entry.
type Kind string

const (
	KindJoin     Kind = "join"
	KindChat     Kind = "chat"
	KindMovement Kind = "movement"
	KindTrade    Kind = "trade"
	KindLoot     Kind = "loot"
	KindSystem   Kind = "system"
	KindEvent    Kind = "event"
	KindBattle   Kind = "battle"
	KindLevelUp  Kind = "levelup"
	KindMet      Kind = "met"
)

// Entry is one timestamped line in the overlay.
type Entry struct {
	ID    string    `json:"id"`
	Time  time.Time `json:"time"`
	Tick  uint64    `json:"tick"`
	Agent string    `json:"agent"`
	Text  string    `json:"text"`
	Kind  Kind      `json:"kind"`
}

// DefaultCapacity is the overlay length used when none is configured.
const DefaultCapacity = 30

// maxJournal bounds the unsaved backlog. Autosave drains it long before
// this in a persisted run; the cap keeps persister-less sessions from
// growing it without limit.
const maxJournal = 1024

// Log is the bounded overlay buffer. Safe for concurrent readers (the HTTP
// API observes it) against the single simulation writer.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	journal  []Entry // entries not yet flushed to storage, bounded by maxJournal
	capacity int
	entropy  *ulid.MonotonicEntropy
	now      func() time.Time

	// Subscribers receive every appended entry (websocket stream,
	// console renderer). Best-effort: a full subscriber drops entries.
	subs []chan Entry
}

// NewLog creates a log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:      time.Now,
	}
}

// Append adds an entry, evicting the oldest once over capacity.
func (l *Log) Append(tick uint64, agent, text string, kind Kind) Entry {
	l.mu.Lock()
	now := l.now()
	e := Entry{
		ID:    ulid.MustNew(ulid.Timestamp(now), l.entropy).String(),
		Time:  now,
		Tick:  tick,
		Agent: agent,
		Text:  text,
		Kind:  kind,
	}
	l.entries = append(l.entries, e)
	l.journal = append(l.journal, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	if len(l.journal) > maxJournal {
		l.journal = l.journal[len(l.journal)-maxJournal:]
	}
	subs := make([]chan Entry, len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

// Len returns the current number of buffered entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Capacity returns the configured maximum length.
func (l *Log) Capacity() int { return l.capacity }

// Recent returns up to n entries, oldest first. n <= 0 returns everything.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if n > 0 && len(l.entries) > n {
		start = len(l.entries) - n
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// CountKind returns how many buffered entries have the given kind.
func (l *Log) CountKind(kind Kind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// DrainUnsaved returns every entry appended since the previous drain
// and clears the backlog. The persistence layer journals these; the
// backlog is exempt from FIFO eviction so saves never miss entries,
// but holds at most maxJournal entries when nothing drains it.
func (l *Log) DrainUnsaved() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.journal
	l.journal = nil
	return out
}

// Subscribe registers a channel receiving every future entry. The returned
// cancel function removes the subscription.
func (l *Log) Subscribe(buffer int) (<-chan Entry, func()) {
	ch := make(chan Entry, buffer)
	l.mu.Lock()
	l.subs = append(l.subs, ch)
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		for i, s := range l.subs {
			if s == ch {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				break
			}
		}
		l.mu.Unlock()
	}
	return ch, cancel
}
