package event

// Channel is the per-frame event list. Events are visible to every Poll made
// after the Emit and before the next Clear; the world clears the channel once
// per frame after the last system has run.
type Channel struct {
	entries []entry
}

type entry struct {
	tag     string
	payload any
}

func NewChannel() *Channel {
	return &Channel{entries: make([]entry, 0, 64)}
}

// Emit appends an event.
func (c *Channel) Emit(tag string, payload any) {
	c.entries = append(c.entries, entry{tag: tag, payload: payload})
}

// Poll returns the payloads emitted under tag, in emission order.
func (c *Channel) Poll(tag string) []any {
	var out []any
	for _, e := range c.entries {
		if e.tag == tag {
			out = append(out, e.payload)
		}
	}
	return out
}

// Len returns the number of events emitted since the last Clear.
func (c *Channel) Len() int { return len(c.entries) }

// Clear drops all events.
func (c *Channel) Clear() {
	clear(c.entries)
	c.entries = c.entries[:0]
}

// PollAs returns the payloads under tag that have type T. Payloads of any
// other type are skipped.
func PollAs[T any](c *Channel, tag string) []T {
	var out []T
	for _, e := range c.entries {
		if e.tag != tag {
			continue
		}
		if v, ok := e.payload.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
