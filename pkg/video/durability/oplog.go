// Package durability wraps the externally-visible calls of a video or
// STT provider adapter in a persist-on-live / replay-from-oplog shim: in
// live mode each wrapped call's input and result are recorded so a
// subsequent replay (after a crash or a worker migration) can return the
// same result without re-issuing the remote call that already took
// effect. Read-only polling calls skip persistence entirely, since
// re-issuing them live is always safe.
package durability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Mode reports whether the enclosing execution is being driven live
// (records are appended as calls complete) or replayed from a
// previously recorded log (calls return their recorded result instead of
// re-executing).
type Mode int

const (
	ModeLive Mode = iota
	ModeReplay
)

// PersistenceClass classifies a wrapped operation by whether re-issuing
// it has an externally visible side effect. WriteRemote operations
// (generate, cancel, extend, upscale, effects, multi-image, lip sync)
// must not be re-issued during replay: their result is recorded and
// returned verbatim. ReadRemote operations (poll, list voices) have no
// side effect and are simply re-executed live on every call, recorded or
// not.
type PersistenceClass int

const (
	WriteRemote PersistenceClass = iota
	ReadRemote
)

// OpLog records and replays the result of WriteRemote operations, keyed
// by operation name. Implementations must preserve call order within an
// operation name: Replay returns entries in the order Record appended
// them.
type OpLog interface {
	Mode() Mode
	Record(ctx context.Context, opName string, input interface{}, output interface{}) error
	Replay(ctx context.Context, opName string, input interface{}, output interface{}) (found bool, err error)
}

// entry is one recorded (input, output) pair, kept as pre-marshaled JSON
// so a replay never depends on the concrete Go type it was recorded
// from matching bit-for-bit.
type entry struct {
	Input  json.RawMessage
	Output json.RawMessage
}

// InMemoryOpLog is the default OpLog: a process-local, mutex-guarded log
// keyed by operation name. It is suited for tests and for a single-
// process durability story; a persistent backend (file, object storage)
// satisfies the same interface.
type InMemoryOpLog struct {
	mu      sync.Mutex
	mode    Mode
	entries map[string][]entry
	cursor  map[string]int
}

// NewInMemoryOpLog builds an empty log in the given mode.
func NewInMemoryOpLog(mode Mode) *InMemoryOpLog {
	return &InMemoryOpLog{mode: mode, entries: make(map[string][]entry), cursor: make(map[string]int)}
}

func (l *InMemoryOpLog) Mode() Mode { return l.mode }

// SetMode switches the log between live and replay, used by callers
// driving a test through both phases of a single run.
func (l *InMemoryOpLog) SetMode(mode Mode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = mode
	for k := range l.cursor {
		l.cursor[k] = 0
	}
}

func (l *InMemoryOpLog) Record(_ context.Context, opName string, input, output interface{}) error {
	inJSON, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("durability: marshal input for %s: %w", opName, err)
	}
	outJSON, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("durability: marshal output for %s: %w", opName, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[opName] = append(l.entries[opName], entry{Input: inJSON, Output: outJSON})
	return nil
}

func (l *InMemoryOpLog) Replay(_ context.Context, opName string, _ interface{}, output interface{}) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.entries[opName]
	idx := l.cursor[opName]
	if idx >= len(entries) {
		return false, nil
	}
	l.cursor[opName] = idx + 1

	if err := json.Unmarshal(entries[idx].Output, output); err != nil {
		return false, fmt.Errorf("durability: unmarshal recorded output for %s: %w", opName, err)
	}
	return true, nil
}

// Len reports how many entries are recorded for opName, for tests
// asserting a call was or wasn't persisted.
func (l *InMemoryOpLog) Len(opName string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[opName])
}
