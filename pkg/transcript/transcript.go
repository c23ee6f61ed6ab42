package transcript

import "sync"

// Transcript is the append-only ordered record of one conversation.
// It is owned by exactly one session; the session's turn loop is the
// only writer, but reads may happen concurrently (event consumers,
// serialization).
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty transcript.
func New(entries ...Entry) *Transcript {
	t := &Transcript{}
	t.Append(entries...)
	return t
}

// Append commits entries to the log. Committed entries are never
// mutated or removed.
func (t *Transcript) Append(entries ...Entry) {
	if len(entries) == 0 {
		return
	}
	t.mu.Lock()
	t.entries = append(t.entries, entries...)
	t.mu.Unlock()
}

// Entries returns a snapshot copy of the committed entries in order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of committed entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Last returns the most recently committed entry, or nil when empty.
func (t *Transcript) Last() Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[len(t.entries)-1]
}

// FindToolCall looks up a call by id across all ToolCalls batches.
func (t *Transcript) FindToolCall(callID string) (ToolCall, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.entries {
		batch, ok := e.(*ToolCalls)
		if !ok {
			continue
		}
		for _, c := range batch.Calls {
			if c.ID == callID {
				return c, true
			}
		}
	}
	return ToolCall{}, false
}

// Equal reports whether two transcripts hold structurally equal entry
// sequences. Used by serialization round-trip checks.
func (t *Transcript) Equal(other *Transcript) bool {
	if t == nil || other == nil {
		return t == other
	}
	a := t.Entries()
	b := other.Entries()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !entriesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func entriesEqual(a, b Entry) bool {
	if a.Kind() != b.Kind() || a.EntryID() != b.EntryID() {
		return false
	}
	switch ea := a.(type) {
	case *Instructions:
		eb := b.(*Instructions)
		if !segmentsEqual(ea.Segments, eb.Segments) || len(ea.ToolDefs) != len(eb.ToolDefs) {
			return false
		}
		for i := range ea.ToolDefs {
			da, db := ea.ToolDefs[i], eb.ToolDefs[i]
			if da.Name != db.Name || da.Description != db.Description || !da.Parameters.Equal(db.Parameters) {
				return false
			}
		}
		return true
	case *Prompt:
		eb := b.(*Prompt)
		return segmentsEqual(ea.Segments, eb.Segments) &&
			optionsEqual(ea.Options, eb.Options) &&
			formatsEqual(ea.Format, eb.Format)
	case *Response:
		eb := b.(*Response)
		if len(ea.AssetIDs) != len(eb.AssetIDs) {
			return false
		}
		for i := range ea.AssetIDs {
			if ea.AssetIDs[i] != eb.AssetIDs[i] {
				return false
			}
		}
		return segmentsEqual(ea.Segments, eb.Segments)
	case *ToolCalls:
		eb := b.(*ToolCalls)
		if len(ea.Calls) != len(eb.Calls) {
			return false
		}
		for i := range ea.Calls {
			ca, cb := ea.Calls[i], eb.Calls[i]
			if ca.ID != cb.ID || ca.ToolName != cb.ToolName || !ca.Arguments.Equal(cb.Arguments) {
				return false
			}
		}
		return true
	case *ToolOutput:
		eb := b.(*ToolOutput)
		return ea.ToolName == eb.ToolName && segmentsEqual(ea.Segments, eb.Segments)
	default:
		return false
	}
}

func segmentsEqual(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		sa, sb := a[i], b[i]
		if sa.Kind != sb.Kind || sa.Text != sb.Text || sa.Source != sb.Source || !sa.Value.Equal(sb.Value) {
			return false
		}
	}
	return true
}

func optionsEqual(a, b *GenerationOptions) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	return floatPtrEqual(a.Temperature, b.Temperature) &&
		floatPtrEqual(a.TopP, b.TopP) &&
		intPtrEqual(a.MaxTokens, b.MaxTokens)
}

func formatsEqual(a, b *ResponseFormat) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	if a.Name != b.Name || a.Type != b.Type {
		return false
	}
	// schema equality is structural via the JSON schema rendering
	return jsonSchemaEqual(a.Schema, b.Schema)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	return *a == *b
}
