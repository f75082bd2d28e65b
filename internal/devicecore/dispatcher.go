package devicecore

// StateHandler is a named, polymorphic handler installed at one state
// level. States are package-level *StateHandler values so setState's
// identity check (current == new) is a pointer comparison — the Go
// stand-in for the source's dispatch-by-function-pointer (spec §9,
// "a capability object per state ... stored behind a polymorphic
// handle").
type StateHandler struct {
	name   string
	handle func(c *Core, d *Device, ev Event)
}

func (h *StateHandler) String() string {
	if h == nil {
		return "<none>"
	}
	return h.name
}

// handleEvent delivers ev to the handler installed at level, if any
// (spec §4.1). Callers decide level; StateEnter/StateTimeout events taken
// from the mailbox are dispatched by the Core's run loop using the level
// carried in ev.Num, while setState delivers StateLeave to the outgoing
// handler directly.
func (c *Core) handleEvent(d *Device, level StateLevel, ev Event) {
	h := d.state[level]
	if h == nil {
		return
	}
	h.handle(c, d, ev)
}

// setState is the sole mutator of d.state[level] (spec §4.1). If
// newHandler differs from the installed handler: the outgoing handler is
// synchronously invoked with StateLeave(level); the slot is updated;
// StateEnter(level) is posted through the mailbox so the incoming
// handler runs only after the outgoing one has fully unwound. A no-op if
// newHandler already occupies level (states never re-enter themselves
// without an explicit leave).
func (c *Core) setState(d *Device, level StateLevel, newHandler *StateHandler) {
	current := d.state[level]
	if current == newHandler {
		return
	}
	if current != nil {
		current.handle(c, d, stateLeaveEvent(d.key, level))
	}
	d.state[level] = newHandler
	if newHandler != nil {
		c.mailbox.Post(stateEnterEvent(d.key, level))
	}
}
