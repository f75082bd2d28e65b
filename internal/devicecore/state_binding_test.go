package devicecore

import (
	"testing"
	"time"

	"zigbee-go-home/internal/ncp"
)

// TestPropertyP8BindingVerifyCadence covers spec P8: BindingTableVerify is
// entered no more than once per bindingVerifyInterval (5 minutes) for a
// given device. The binding sub-machine is driven directly via
// handleEvent — dispatch only forwards to it through topIdle, which is
// exercised separately by TestPropertyP1SubMachinesOnlyInstalledWhileIdle.
func TestPropertyP8BindingVerifyCadence(t *testing.T) {
	const key = DeviceKey(0x80)
	nodes := newFakeNodes()
	nodes.seed(key, &Node{BindingTable: []ncp.BindingTableEntry{
		{SrcEndpoint: 0x01, ClusterID: 0x0006, DstEndpoint: 0x01},
	}})
	sink := newFakeSink()
	c := newTestCore(&fakeAps{}, nodes, newFakeDDF(), nil, sink)
	d, _ := c.registry.getOrCreate(key)
	d.managed = true
	d.state[LevelBinding] = stateBindingIdle

	drainBinding := func(ev Event) {
		c.handleEvent(d, LevelBinding, ev)
		for c.mailbox.Len() > 0 {
			queued, ok := c.mailbox.Next()
			if !ok {
				return
			}
			c.handleEvent(d, LevelBinding, queued)
		}
	}

	drainBinding(Event{Kind: EventPoll, Device: key})

	if sink.count("binding_verified") != 1 {
		t.Fatalf("binding_verified emitted %d times on first pass, want 1", sink.count("binding_verified"))
	}
	if got := d.state[LevelBinding].String(); got != "BindingIdle" {
		t.Fatalf("state = %q, want BindingIdle (one entry, queue exhausted)", got)
	}
	if d.binding.lastVerify.IsZero() {
		t.Fatal("lastVerify must be stamped after a verification pass")
	}

	// A second Poll immediately afterward must not start another pass —
	// bindingVerifyInterval has not elapsed.
	drainBinding(Event{Kind: EventPoll, Device: key})

	if sink.count("binding_verified") != 1 {
		t.Fatalf("binding_verified emitted %d times after second immediate poll, want still 1", sink.count("binding_verified"))
	}

	// Once the interval has elapsed, the next Poll starts a fresh pass.
	d.binding.lastVerify = d.binding.lastVerify.Add(-bindingVerifyInterval - time.Second)
	drainBinding(Event{Kind: EventPoll, Device: key})

	if sink.count("binding_verified") != 2 {
		t.Fatalf("binding_verified emitted %d times after interval elapsed, want 2", sink.count("binding_verified"))
	}
}

// TestBindingTableVerifyMultipleEntriesOneTickEach covers the re-queue
// shape of bindingTableVerifyHandle: one entry is verified per
// EventBindingTick rather than looping through the whole table at once,
// so other events can interleave.
func TestBindingTableVerifyMultipleEntriesOneTickEach(t *testing.T) {
	const key = DeviceKey(0x81)
	nodes := newFakeNodes()
	nodes.seed(key, &Node{BindingTable: []ncp.BindingTableEntry{
		{SrcEndpoint: 0x01, ClusterID: 0x0006, DstEndpoint: 0x01},
		{SrcEndpoint: 0x01, ClusterID: 0x0008, DstEndpoint: 0x01},
	}})
	sink := newFakeSink()
	c := newTestCore(&fakeAps{}, nodes, newFakeDDF(), nil, sink)
	d, _ := c.registry.getOrCreate(key)
	d.managed = true
	d.binding.iter = 0
	d.state[LevelBinding] = stateBindingTableVerify

	c.handleEvent(d, LevelBinding, Event{Kind: EventBindingTick, Device: key})

	if sink.count("binding_verified") != 1 {
		t.Fatalf("after one tick, binding_verified = %d, want 1", sink.count("binding_verified"))
	}
	if d.binding.iter != 1 {
		t.Fatalf("iter after one tick = %d, want 1", d.binding.iter)
	}
	if got := d.state[LevelBinding].String(); got != "BindingTableVerify" {
		t.Fatalf("state after one tick = %q, want still BindingTableVerify", got)
	}
	if c.mailbox.Len() != 1 {
		t.Fatalf("mailbox length = %d, want 1 (re-queued tick for the second entry)", c.mailbox.Len())
	}

	queued, _ := c.mailbox.Next()
	c.handleEvent(d, LevelBinding, queued)

	if sink.count("binding_verified") != 2 {
		t.Fatalf("after the second tick, binding_verified = %d, want 2", sink.count("binding_verified"))
	}
	if got := d.state[LevelBinding].String(); got != "BindingTableVerify" {
		t.Fatalf("state after the second entry = %q, want still BindingTableVerify (idle transition checked on the next tick)", got)
	}

	// A third tick finds iter >= len(table) and returns to BindingIdle.
	last, _ := c.mailbox.Next()
	c.handleEvent(d, LevelBinding, last)

	if sink.count("binding_verified") != 2 {
		t.Fatalf("binding_verified after the exhausting tick = %d, want still 2", sink.count("binding_verified"))
	}
	if got := d.state[LevelBinding].String(); got != "BindingIdle" {
		t.Fatalf("final state = %q, want BindingIdle", got)
	}
}

func TestBindingIdleRecordsMgmtBindSupport(t *testing.T) {
	const key = DeviceKey(0x82)
	c := newTestCore(&fakeAps{}, newFakeNodes(), newFakeDDF(), nil, nil)
	d, _ := c.registry.getOrCreate(key)
	d.managed = true
	d.state[LevelBinding] = stateBindingIdle

	c.handleEvent(d, LevelBinding, Event{Kind: EventBindingTable, Device: key, Num: 0})
	if !d.binding.mgmtBindSupported {
		t.Fatal("Num==0 (success) must record Mgmt_Bind_req support")
	}

	c.handleEvent(d, LevelBinding, Event{Kind: EventBindingTable, Device: key, Num: 1})
	if d.binding.mgmtBindSupported {
		t.Fatal("a non-zero status must record Mgmt_Bind_req as unsupported")
	}
}
