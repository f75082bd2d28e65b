package devicecore

var (
	statePollIdle *StateHandler
	statePollNext *StateHandler
	statePollBusy *StateHandler
)

func init() {
	statePollIdle = &StateHandler{name: "PollIdle", handle: pollIdleHandle}
	statePollNext = &StateHandler{name: "PollNext", handle: pollNextHandle}
	statePollBusy = &StateHandler{name: "PollBusy", handle: pollBusyHandle}
}

// pollIdleHandle implements spec §4.4 PollIdle: scan every sub-device
// for stale, DDF-pollable items and hand the collected queue to
// PollNext, reversed so consumption (from the tail) is LIFO.
func pollIdleHandle(c *Core, d *Device, ev Event) {
	if ev.Kind != EventPoll {
		return
	}
	now := c.now()
	var collected []PollItem
	for _, ref := range d.subDevices {
		res, ok := c.resources.Resolve(ref)
		if !ok {
			continue
		}
		for _, item := range res.Items() {
			if !isStale(item, now) {
				continue
			}
			ddfItem, ok := c.ddf.ItemFor(d.key, item.Suffix())
			if !ok || ddfItem.ReadParameters == "" {
				continue
			}
			collected = append(collected, PollItem{
				Ref:            ref,
				ItemSuffix:     item.Suffix(),
				ReadParameters: ddfItem.ReadParameters,
			})
		}
	}
	if len(collected) == 0 {
		return
	}
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	d.pollQueue = collected
	c.setState(d, LevelPoll, statePollNext)
}

// pollNextHandle implements spec §4.4 PollNext.
func pollNextHandle(c *Core, d *Device, ev Event) {
	switch ev.Kind {
	case EventStateEnter, EventStateTimeout:
		pollNextAdvance(c, d)
	case EventStateLeave:
		d.timers.cancel(LevelPoll)
	}
}

func pollNextAdvance(c *Core, d *Device) {
	node := c.getNode(d.key)
	if !d.reachable(c.now(), node) {
		dropped := len(d.pollQueue)
		d.pollQueue = nil
		if dropped > 0 {
			c.logger.Warn("poll queue dropped: device unreachable", "device", deviceKeyHex(d.key), "count", dropped)
			c.emit("poll_queue_dropped", pollQueueDroppedRecord{Device: deviceKeyHex(d.key), Count: dropped})
		}
		c.setState(d, LevelPoll, statePollIdle)
		return
	}
	if len(d.pollQueue) == 0 {
		c.setState(d, LevelPoll, statePollIdle)
		return
	}

	idx := len(d.pollQueue) - 1
	item := &d.pollQueue[idx]
	fn, ok := c.ddf.ReadFunction(item.ReadParameters)
	if !ok {
		c.logger.Warn("no read function for poll item", "device", deviceKeyHex(d.key),
			"item", item.ItemSuffix, "params", string(item.ReadParameters))
		d.pollQueue = d.pollQueue[:idx]
		pollNextAdvance(c, d) // re-entrancy through the empty/non-empty check
		return
	}

	res := fn(c.aps, d.key, d.NwkAddress, d.ExtAddress, item.Ref, item.ReadParameters)
	if res.Enqueued {
		d.pendingRead = pendingRequest{apsReqID: res.ReqID, enqueued: true}
		c.setState(d, LevelPoll, statePollBusy)
		return
	}
	item.RetryCount++
	if item.RetryCount >= MaxPollItemRetries {
		d.pollQueue = d.pollQueue[:idx]
		if len(d.pollQueue) == 0 {
			c.setState(d, LevelPoll, statePollIdle)
			return
		}
	}
	d.timers.arm(c.mailbox, d.key, LevelPoll, MinMacPollRxOn)
}

// pollBusyHandle implements spec §4.4 PollBusy.
func pollBusyHandle(c *Core, d *Device, ev Event) {
	switch ev.Kind {
	case EventStateEnter:
		d.timers.arm(c.mailbox, d.key, LevelPoll, MinMacPollRxOn)
	case EventApsConfirm:
		if !d.pendingRead.matches(ev.ReqID) {
			return
		}
		d.timers.cancel(LevelPoll)
		if len(d.pollQueue) > 0 {
			idx := len(d.pollQueue) - 1
			if ev.Num == 0 {
				d.pollQueue = d.pollQueue[:idx]
			} else {
				d.pollQueue[idx].RetryCount++
				if d.pollQueue[idx].RetryCount >= MaxPollItemRetries {
					d.pollQueue = d.pollQueue[:idx]
				}
			}
		}
		c.setState(d, LevelPoll, statePollNext)
	case EventStateTimeout:
		c.setState(d, LevelPoll, statePollNext)
	}
}

// pollQueueDroppedRecord is the observability payload emitted when
// PollNext finds the device unreachable and drops the queue wholesale
// (SPEC_FULL §10.5).
type pollQueueDroppedRecord struct {
	Device string `json:"device"`
	Count  int    `json:"count"`
}
