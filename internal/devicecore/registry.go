package devicecore

import "sync"

// Registry is the process-wide DeviceKey → Device map (spec I5, §4.6).
type Registry struct {
	mu      sync.Mutex
	devices map[DeviceKey]*Device
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[DeviceKey]*Device)}
}

// getOrCreate returns the existing Device for key, or constructs a new
// one (its state[0] is left nil; the caller drives it into Init via
// setState). The second return value reports whether a Device was
// newly created.
func (r *Registry) getOrCreate(key DeviceKey) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[key]; ok {
		return d, false
	}
	d := newDevice(key)
	r.devices[key] = d
	return d, true
}

// remove destroys the Device for key: its timers are cancelled and every
// sub-device it still references is detached from it (not destroyed —
// spec §4.6) via store, which may be nil in tests that don't exercise
// sub-devices.
func (r *Registry) remove(key DeviceKey, store ResourceStore) {
	r.mu.Lock()
	d, ok := r.devices[key]
	if ok {
		delete(r.devices, key)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	d.timers.cancelAll()
	if store == nil {
		return
	}
	for _, ref := range d.subDevices {
		if res, found := store.Resolve(ref); found {
			res.DetachParent()
		}
	}
}

// Len reports the number of devices currently registered. For tests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}
