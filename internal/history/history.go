// Package history keeps the two-stack undo/redo log of reversible commands.
package history

import "sync"

// Command is one atomic, replayable mutation against persisted state.
// Implementations carry value snapshots of the rows they touch, so Invert
// restores exact prior field values and Apply re-applies the same write.
type Command interface {
	Apply() error
	Invert() error
	Description() string
}

// DefaultLimit caps the past stack; oldest entries are evicted silently.
const DefaultLimit = 100

// Log is the undo/redo history. All operations serialize on an internal
// mutex: the stacks are not safe for concurrent pop-then-push races.
type Log struct {
	mu     sync.Mutex
	past   []Command
	future []Command
	limit  int
}

// NewLog creates a Log capped at limit past entries. limit <= 0 uses
// DefaultLimit.
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Record pushes an already-applied command onto the past stack and clears
// the future: there is no redo after a new branch of action.
func (l *Log) Record(c Command) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.past = append(l.past, c)
	if len(l.past) > l.limit {
		l.past = l.past[len(l.past)-l.limit:]
	}
	l.future = nil
}

// Undo inverts the most recent command and moves it to the future stack.
// If the invert fails, the command is pushed back onto the past stack
// unchanged and the error is returned; history stays consistent with the
// actual persisted state.
func (l *Log) Undo() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.past) == 0 {
		return nil
	}

	c := l.past[len(l.past)-1]
	l.past = l.past[:len(l.past)-1]

	if err := c.Invert(); err != nil {
		l.past = append(l.past, c)
		return err
	}

	l.future = append([]Command{c}, l.future...)
	return nil
}

// Redo re-applies the next future command and moves it back to the past
// stack, with the same failure-rollback rule as Undo.
func (l *Log) Redo() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.future) == 0 {
		return nil
	}

	c := l.future[0]
	l.future = l.future[1:]

	if err := c.Apply(); err != nil {
		l.future = append([]Command{c}, l.future...)
		return err
	}

	l.past = append(l.past, c)
	return nil
}

// CanUndo reports whether an undoable command exists.
func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.past) > 0
}

// CanRedo reports whether a redoable command exists.
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.future) > 0
}

// Descriptions returns the command descriptions of both stacks for a
// history view, most recent past entry first.
func (l *Log) Descriptions() (past, future []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.past) - 1; i >= 0; i-- {
		past = append(past, l.past[i].Description())
	}
	for _, c := range l.future {
		future = append(future, c.Description())
	}
	return past, future
}
