// Package history keeps a bounded linear undo/redo history of activity
// bodies with debounced persistence. One instance per open editor.
package history

import (
	"sync"
	"time"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	// DefaultDebounce is how long after the last mutation the persistence
	// callback fires.
	DefaultDebounce = 1000 * time.Millisecond
	// DefaultMax caps the total snapshot count; the oldest snapshots are
	// evicted from the bottom of the past stack.
	DefaultMax = 100
)

// SaveState 保存状态：空闲 / 保存中 / 保存失败
type SaveState int

const (
	SaveIdle SaveState = iota
	SaveSaving
	SaveFailed
)

// SaveFunc persists the head snapshot. A failure does not corrupt history;
// the save is retried on the next debounced fire.
type SaveFunc func(b *body.Body) error

type Options struct {
	Debounce time.Duration
	Max      int
	// OnStacksChanged is invoked after every cursor or stack change with
	// the current undoable/redoable flags. Drives the toolbar.
	OnStacksChanged func(undoable, redoable bool)
	// OnSaveState is invoked whenever the save state changes.
	OnSaveState func(SaveState)
}

// Engine 两栈式撤销/重做引擎，快照为完整 Body 克隆
type Engine struct {
	mu sync.Mutex

	past     []*body.Body
	head     *body.Body
	future   []*body.Body
	revision uint64

	save     SaveFunc
	debounce time.Duration
	max      int
	timer    *time.Timer
	pending  bool
	closed   bool

	saveState       SaveState
	onStacksChanged func(undoable, redoable bool)
	onSaveState     func(SaveState)
}

func New(initial *body.Body, save SaveFunc, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	return &Engine{
		head:            mustClone(initial),
		revision:        1,
		save:            save,
		debounce:        opts.Debounce,
		max:             opts.Max,
		onStacksChanged: opts.OnStacksChanged,
		onSaveState:     opts.OnSaveState,
	}
}

func mustClone(b *body.Body) *body.Body {
	if b == nil {
		return nil
	}
	c, err := b.Clone()
	if err != nil {
		// a body that cannot round-trip violates the serialization
		// invariant; treat as corruption
		logger.Log.Error("history: body clone failed", zap.Error(err))
		return b
	}
	return c
}

// Head returns the current snapshot.
func (e *Engine) Head() *body.Body {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.head
}

// Revision returns the strictly increasing revision counter. Undo advances
// it too; it never rolls back.
func (e *Engine) Revision() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

// Push appends a new snapshot, clears the redo stack and schedules a
// debounced save. Adjacent duplicates are dropped.
func (e *Engine) Push(b *body.Body) {
	e.mu.Lock()
	if e.head != nil && e.head.Equal(b) {
		e.mu.Unlock()
		return
	}
	if e.head != nil {
		e.past = append(e.past, e.head)
	}
	e.head = mustClone(b)
	e.future = nil
	e.revision++
	e.evictLocked()
	e.scheduleSaveLocked()
	e.mu.Unlock()
	e.notifyStacks()
}

// SaveCurrent replaces the head snapshot in place and reschedules the save.
// Used for continuous edits inside one logical action (dragging).
func (e *Engine) SaveCurrent(b *body.Body) {
	e.mu.Lock()
	if e.head != nil && e.head.Equal(b) && !e.pending {
		e.mu.Unlock()
		return
	}
	e.head = mustClone(b)
	e.revision++
	e.scheduleSaveLocked()
	e.mu.Unlock()
}

// Undo moves the cursor back and returns the now-current snapshot, or nil
// at the boundary.
func (e *Engine) Undo() *body.Body {
	e.mu.Lock()
	if len(e.past) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.future = append(e.future, e.head)
	e.head = e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.revision++
	e.scheduleSaveLocked()
	// hand out a clone: the caller edits the returned body in place, and a
	// shared pointer would make Push see its own head and drop the edit
	head := mustClone(e.head)
	e.mu.Unlock()
	e.notifyStacks()
	return head
}

// Redo moves the cursor forward and returns the now-current snapshot, or
// nil at the boundary.
func (e *Engine) Redo() *body.Body {
	e.mu.Lock()
	if len(e.future) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.past = append(e.past, e.head)
	e.head = e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]
	e.revision++
	e.scheduleSaveLocked()
	head := mustClone(e.head)
	e.mu.Unlock()
	e.notifyStacks()
	return head
}

// Undoable reports whether an undo would move the cursor.
func (e *Engine) Undoable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

// Redoable reports whether a redo would move the cursor.
func (e *Engine) Redoable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// State returns the current save state.
func (e *Engine) State() SaveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveState
}

// Dirty reports whether a save is pending or has failed.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending || e.saveState == SaveFailed
}

// Flush runs any pending save synchronously. Called on editor close; a
// failure here is the dirty-state warning path.
func (e *Engine) Flush() error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if !e.pending && e.saveState != SaveFailed {
		e.mu.Unlock()
		return nil
	}
	e.pending = false
	head := e.head
	e.mu.Unlock()
	return e.runSave(head)
}

// Close flushes and stops the engine. Further mutations are ignored.
func (e *Engine) Close() error {
	err := e.Flush()
	e.mu.Lock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()
	return err
}

// evictLocked drops the oldest snapshots beyond the cap. Only undo depth
// is lost; the head snapshot is never evicted.
func (e *Engine) evictLocked() {
	total := len(e.past) + 1 + len(e.future)
	if over := total - e.max; over > 0 && len(e.past) >= over {
		e.past = append([]*body.Body(nil), e.past[over:]...)
	}
}

// scheduleSaveLocked resets the single debounce timer.
func (e *Engine) scheduleSaveLocked() {
	if e.closed || e.save == nil {
		return
	}
	e.pending = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, e.fire)
}

func (e *Engine) fire() {
	e.mu.Lock()
	if e.closed || !e.pending {
		e.mu.Unlock()
		return
	}
	e.pending = false
	head := e.head
	e.mu.Unlock()
	e.runSave(head)
}

func (e *Engine) runSave(head *body.Body) error {
	e.setSaveState(SaveSaving)
	err := e.save(head)
	if err != nil {
		logger.Log.Warn("history: save failed, will retry on next mutation", zap.Error(err))
		e.setSaveState(SaveFailed)
		return err
	}
	e.setSaveState(SaveIdle)
	return nil
}

func (e *Engine) setSaveState(s SaveState) {
	e.mu.Lock()
	changed := e.saveState != s
	e.saveState = s
	cb := e.onSaveState
	e.mu.Unlock()
	if changed && cb != nil {
		cb(s)
	}
}

func (e *Engine) notifyStacks() {
	e.mu.Lock()
	cb := e.onStacksChanged
	undoable := len(e.past) > 0
	redoable := len(e.future) > 0
	e.mu.Unlock()
	if cb != nil {
		cb(undoable, redoable)
	}
}
