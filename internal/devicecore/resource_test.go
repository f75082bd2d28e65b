package devicecore

import "testing"

func TestIsStale(t *testing.T) {
	now := epoch1

	tests := []struct {
		name string
		item *fakeItem
		want bool
	}{
		{"never set", &fakeItem{}, true},
		{"set, no refresh interval configured", &fakeItem{lastSet: now}, false},
		{"set, within refresh interval", &fakeItem{lastSet: now.Add(-1), interval: 10}, false},
		{"set, past refresh interval", &fakeItem{lastSet: now.Add(-100), interval: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStale(tt.item, now); got != tt.want {
				t.Errorf("isStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAffectedSubDevicesPollVisitsAll(t *testing.T) {
	d := newDevice(DeviceKey(0x60))
	d.addSubDevice(SubDeviceRef{Prefix: "lights", UniqueID: "a"})
	d.addSubDevice(SubDeviceRef{Prefix: "lights", UniqueID: "b"})

	refs := affectedSubDevices(d, Event{Kind: EventPoll})
	if len(refs) != 2 {
		t.Fatalf("affectedSubDevices(Poll) = %v, want both sub-devices", refs)
	}
}

func TestAffectedSubDevicesNamedResourceOnly(t *testing.T) {
	d := newDevice(DeviceKey(0x61))
	d.addSubDevice(SubDeviceRef{Prefix: "lights", UniqueID: "a"})
	d.addSubDevice(SubDeviceRef{Prefix: "lights", UniqueID: "b"})

	refs := affectedSubDevices(d, Event{Kind: EventAttributeChanged, Resource: "b"})
	if len(refs) != 1 || refs[0].UniqueID != "b" {
		t.Fatalf("affectedSubDevices(named) = %v, want only %q", refs, "b")
	}
}

func TestAffectedSubDevicesNoResourceNamed(t *testing.T) {
	d := newDevice(DeviceKey(0x62))
	d.addSubDevice(SubDeviceRef{Prefix: "lights", UniqueID: "a"})
	if refs := affectedSubDevices(d, Event{Kind: EventAttributeChanged}); refs != nil {
		t.Fatalf("affectedSubDevices(no resource) = %v, want nil", refs)
	}
}

func TestSweepItemChangesVerifiesAndGarbageCollects(t *testing.T) {
	const key = DeviceKey(0x63)
	c := newTestCore(&fakeAps{}, newFakeNodes(), newFakeDDF(), newFakeResourceStore(), nil)
	d, _ := c.registry.getOrCreate(key)
	d.managed = true

	res := newFakeResource("lights", "a")
	res.items["OnOff"] = &fakeItem{suffix: "OnOff", value: true, lastSet: epoch1}
	done := &fakeStateChange{done: true}
	pending := &fakeStateChange{done: false}
	res.changes = []StateChange{done, pending}

	store := c.resources.(*fakeResourceStore)
	ref := store.seed(res)
	d.addSubDevice(ref)

	sweepItemChanges(c, d, Event{Kind: EventAttributeChanged, Resource: "a", What: "OnOff"})

	if done.verifyCalls != 1 || pending.verifyCalls != 1 {
		t.Fatalf("Verify calls: done=%d pending=%d, want 1 each", done.verifyCalls, pending.verifyCalls)
	}
	if len(res.changes) != 1 || res.changes[0] != pending {
		t.Fatalf("changes after GC = %v, want only the pending one", res.changes)
	}
}
