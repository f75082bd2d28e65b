package devicecore

import "testing"

// TestCoreAdmitUnmanagedNeverTransitions covers the managed-gate
// coexistence rule: when Managed is false, admit leaves the device's
// top-level state nil and dispatch never touches it.
func TestCoreAdmitUnmanagedNeverTransitions(t *testing.T) {
	c := New(Config{Logger: testLogger(), Aps: &fakeAps{}, Nodes: newFakeNodes(), DDF: newFakeDDF(), Managed: false})
	const key = DeviceKey(0x90)

	c.Admit(key)
	drain(c)

	d, _ := c.registry.getOrCreate(key)
	if d.managed {
		t.Fatal("device must not be managed when Core.Managed is false")
	}
	if d.state[LevelTop] != nil {
		t.Fatal("an unmanaged device must never receive a top-level state")
	}
}

// TestCoreAdmitManagedReachesInit covers the managed path: Admit posts a
// Poll that creates the device and drives it into Init.
func TestCoreAdmitManagedReachesInit(t *testing.T) {
	nodes := newFakeNodes()
	const key = DeviceKey(0x91)
	nodes.seed(key, &Node{NwkAddress: 0x1234}) // a known, non-coordinator node avoids both elision branches
	c := newTestCore(&fakeAps{}, nodes, newFakeDDF(), nil, nil)

	c.Admit(key)
	drain(c)

	d, _ := c.registry.getOrCreate(key)
	if !d.managed {
		t.Fatal("device must be managed when Core.Managed is true")
	}
	if got := d.state[LevelTop].String(); got != "Init" {
		t.Fatalf("state = %q, want Init", got)
	}
}

// TestCoreRemoveClearsSnapshotAndRecreatesDevice covers spec §4.6: Remove
// drops both the registry entry and its cross-goroutine snapshot.
func TestCoreRemoveClearsSnapshotAndRecreatesDevice(t *testing.T) {
	c := newTestCore(&fakeAps{}, newFakeNodes(), newFakeDDF(), nil, nil)
	const key = DeviceKey(0x92)

	c.Admit(key)
	drain(c)

	if _, ok := c.Snapshot(key); !ok {
		t.Fatal("expected a snapshot to exist after Admit")
	}

	c.Remove(key)

	if _, ok := c.Snapshot(key); ok {
		t.Fatal("Snapshot must report not-found after Remove")
	}
	if _, created := c.registry.getOrCreate(key); !created {
		t.Fatal("a removed device must be recreated fresh on next contact")
	}
}

// TestCorePublishSnapshotEmitsDeviceStateChangedOnlyOnTransition covers
// SPEC_FULL's device_state_changed wiring: the event fires once per
// observable transition (state name or reachability), not on every
// dispatch.
func TestCorePublishSnapshotEmitsDeviceStateChangedOnlyOnTransition(t *testing.T) {
	sink := newFakeSink()
	nodes := newFakeNodes()
	const key = DeviceKey(0x93)
	nodes.seed(key, &Node{NwkAddress: 0}) // coordinator: Init -> Dead in one step
	c := newTestCore(&fakeAps{}, nodes, newFakeDDF(), nil, sink)

	c.Admit(key)
	drain(c)

	if got := sink.count("device_state_changed"); got == 0 {
		t.Fatal("expected at least one device_state_changed emission reaching Dead")
	}
	before := sink.count("device_state_changed")

	// A further Poll changes nothing observable (Dead ignores everything
	// but StateEnter) — publishSnapshot must not emit again.
	c.NotifyPoll(key)
	drain(c)

	if got := sink.count("device_state_changed"); got != before {
		t.Fatalf("device_state_changed emitted again with no observable change: before=%d after=%d", before, got)
	}
}

// TestCoreNotifyAttributeChangedReachesTopLevel covers the external
// mutation contract: NotifyAttributeChanged posts onto the mailbox rather
// than mutating the Device directly, so BasicCluster (which watches for
// EventAttributeChanged on ManufacturerName/ModelId) observes it.
func TestCoreNotifyAttributeChangedReachesTopLevel(t *testing.T) {
	const key = DeviceKey(0x94)
	nodes := newFakeNodes()
	nodes.seed(key, &Node{NwkAddress: 0x1234}) // a known, non-coordinator node keeps Init from eliding to Dead
	c := newTestCore(&fakeAps{}, nodes, newFakeDDF(), newFakeResourceStore(), nil)
	d, _ := c.registry.getOrCreate(key)
	d.managed = true
	d.state[LevelTop] = stateBasicCluster

	c.NotifyAttributeChanged(key, "", "ModelId")
	drain(c)

	if got := d.state[LevelTop].String(); got != "Init" {
		t.Fatalf("state = %q, want Init (BasicCluster restarts on a watched attribute change)", got)
	}
}
