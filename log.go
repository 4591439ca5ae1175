package nimbus

import "fmt"

// Log is an ordered, append-only sequence of chat messages.
//
// Entries are kept in insertion order, which is display order. The log grows
// monotonically except for in-place mutation of a currently pending entry;
// entries are never reordered or deleted. An id→index lookup backs the
// ordered sequence so Resolve and AppendChunk are O(1) rather than a scan.
//
// Log is not safe for concurrent use. Per the session model, it is mutated
// only by the Session that owns it and the stream reconciliation that session
// drives.
type Log struct {
	entries []Message
	index   map[string]int

	// notify, when set, is invoked whenever the tail of the log changes:
	// on every append and on every mutation of the tail entry. The
	// presentation layer uses it as a scroll-to-latest signal.
	notify func()
}

// NewLog creates an empty message log.
func NewLog() *Log {
	return &Log{
		index: make(map[string]int),
	}
}

// SetNotify registers a tail-change callback. Pass nil to clear it.
func (l *Log) SetNotify(fn func()) {
	l.notify = fn
}

// Append adds one or more messages at the tail, preserving argument order.
// It panics if a message ID duplicates an existing entry, since a duplicate
// would break the reconciliation key invariant.
func (l *Log) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		if _, ok := l.index[m.ID]; ok {
			panic(fmt.Sprintf("nimbus: duplicate message id %q", m.ID))
		}
		l.index[m.ID] = len(l.entries)
		l.entries = append(l.entries, m)
	}
	l.tailChanged()
}

// Len returns the number of entries in the log.
func (l *Log) Len() int {
	return len(l.entries)
}

// Messages returns a copy of all entries in conversation order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get returns the entry with the given ID.
func (l *Log) Get(id string) (Message, bool) {
	i, ok := l.index[id]
	if !ok {
		return Message{}, false
	}
	return l.entries[i], true
}

// Resolve locates the entry with the given ID and replaces it with the
// result of applying fn to it. The replacement keeps the original ID.
//
// An entry that has already reached a terminal kind (image or error) cannot
// be resolved again: at most one terminal resolution ever occurs per entry.
func (l *Log) Resolve(id string, fn func(Message) Message) error {
	i, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	cur := l.entries[i]
	if cur.terminal() {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}

	next := fn(cur)
	next.ID = cur.ID
	l.entries[i] = next

	if i == len(l.entries)-1 {
		l.tailChanged()
	}
	return nil
}

// AppendChunk concatenates a streamed text fragment onto the entry with the
// given ID. The first fragment replaces any placeholder content and moves a
// pending entry to the text kind; subsequent fragments append. Fragments are
// applied in call order; no reordering is performed here.
func (l *Log) AppendChunk(id, fragment string) error {
	return l.Resolve(id, func(m Message) Message {
		if m.Kind == KindPending {
			m.Kind = KindText
			m.Content = fragment
			return m
		}
		m.Content += fragment
		return m
	})
}

func (l *Log) tailChanged() {
	if l.notify != nil {
		l.notify()
	}
}
