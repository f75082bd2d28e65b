package devicecore

import "testing"

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry()
	const key = DeviceKey(0x30)

	d1, created := r.getOrCreate(key)
	if !created {
		t.Fatal("first call must report created")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	d2, created := r.getOrCreate(key)
	if created {
		t.Fatal("second call must not report created")
	}
	if d1 != d2 {
		t.Fatal("second call must return the same *Device")
	}
}

func TestRegistryRemoveDetachesSubDevices(t *testing.T) {
	r := NewRegistry()
	const key = DeviceKey(0x31)
	d, _ := r.getOrCreate(key)
	ref := SubDeviceRef{Prefix: "lights", UniqueID: "l1"}
	d.addSubDevice(ref)

	store := newFakeResourceStore()
	res := newFakeResource("lights", "l1")
	store.resources[ref] = res

	r.remove(key, store)

	if r.Len() != 0 {
		t.Fatalf("Len after remove = %d, want 0", r.Len())
	}
	if !res.detached {
		t.Fatal("remove must detach the device's sub-devices from their parent")
	}
	if _, created := r.getOrCreate(key); !created {
		t.Fatal("a removed key must be recreated fresh on next contact")
	}
}

func TestRegistryRemoveUnknownKeyIsNoop(t *testing.T) {
	r := NewRegistry()
	r.remove(DeviceKey(0x99), nil) // must not panic on a nil store or unknown key
}
