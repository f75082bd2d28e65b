package coordinator

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"zigbee-go-home/internal/devicecore"
	"zigbee-go-home/internal/store"
)

// endpointResourceStore implements devicecore.ResourceStore over the
// existing per-device store: a sub-device is one endpoint, identified by
// "<ieee>:<endpointID>" (devicecore.SubDeviceRef{Prefix: "endpoint"}),
// and its items are the same Properties map emitStandardProperty already
// maintains on store.Device. Grounded on store.Device.Properties — no new
// persistence layer, just a devicecore-shaped read/write view over it.
type endpointResourceStore struct {
	store store.Store

	mu      sync.RWMutex
	lastSet map[string]time.Time // "ieee:ep:suffix" -> last write time
}

func newEndpointResourceStore(st store.Store) *endpointResourceStore {
	return &endpointResourceStore{store: st, lastSet: make(map[string]time.Time)}
}

func endpointRef(ieee string, ep uint8) devicecore.SubDeviceRef {
	return devicecore.SubDeviceRef{Prefix: "endpoint", UniqueID: ieee + ":" + strconv.Itoa(int(ep))}
}

func splitEndpointUniqueID(uniqueID string) (ieee string, ep uint8, ok bool) {
	idx := strings.LastIndex(uniqueID, ":")
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.ParseUint(uniqueID[idx+1:], 10, 8)
	if err != nil {
		return "", 0, false
	}
	return uniqueID[:idx], uint8(n), true
}

// markPropertySet records that suffix on the ieee/ep sub-device was just
// written, so isStale (in devicecore's poll scan) sees a fresh LastSet.
// Called from emitStandardProperty right after it saves dev.Properties.
func (s *endpointResourceStore) markPropertySet(ieee string, ep uint8, suffix string, when time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSet[ieee+":"+strconv.Itoa(int(ep))+":"+suffix] = when
}

func (s *endpointResourceStore) propertyLastSet(ieee string, ep uint8, suffix string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSet[ieee+":"+strconv.Itoa(int(ep))+":"+suffix]
}

// Resolve implements devicecore.ResourceStore.
func (s *endpointResourceStore) Resolve(ref devicecore.SubDeviceRef) (devicecore.Resource, bool) {
	if ref.Prefix != "endpoint" {
		return nil, false
	}
	ieee, ep, ok := splitEndpointUniqueID(ref.UniqueID)
	if !ok {
		return nil, false
	}
	dev, err := s.store.GetDevice(ieee)
	if err != nil {
		return nil, false
	}
	found := false
	for _, e := range dev.Endpoints {
		if e.ID == ep {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}
	return &endpointResource{store: s, dev: dev, ep: ep}, true
}

// endpointResource implements devicecore.Resource over one store.Device
// endpoint. PendingChanges always returns nil: this teacher's store has
// no outstanding-write tracker (writes are fire-and-forget ZCL commands
// issued elsewhere), so there is nothing for the item-change sweep to
// verify yet.
type endpointResource struct {
	store *endpointResourceStore
	dev   *store.Device
	ep    uint8
}

func (r *endpointResource) Prefix() string   { return "endpoint" }
func (r *endpointResource) UniqueID() string { return r.dev.IEEEAddress + ":" + strconv.Itoa(int(r.ep)) }

func (r *endpointResource) Item(suffix string) (devicecore.ResourceItem, bool) {
	if r.dev.Properties == nil {
		return nil, false
	}
	v, ok := r.dev.Properties[suffix]
	if !ok {
		return nil, false
	}
	return propertyItem{suffix: suffix, value: v, lastSet: r.store.propertyLastSet(r.dev.IEEEAddress, r.ep, suffix)}, true
}

func (r *endpointResource) Items() []devicecore.ResourceItem {
	items := make([]devicecore.ResourceItem, 0, len(r.dev.Properties))
	for suffix, v := range r.dev.Properties {
		items = append(items, propertyItem{suffix: suffix, value: v, lastSet: r.store.propertyLastSet(r.dev.IEEEAddress, r.ep, suffix)})
	}
	return items
}

func (r *endpointResource) PendingChanges() []devicecore.StateChange { return nil }
func (r *endpointResource) GarbageCollectChanges()                   {}
func (r *endpointResource) DetachParent()                            {}

// propertyItem implements devicecore.ResourceItem over one Properties
// entry. RefreshInterval is always 0 (no periodic poll hint): the
// existing reporting configuration (configureDevice's ConfigureReporting
// calls) already keeps these attributes fresh via push reports, so the
// poll engine only needs LastSet to decide staleness on items that never
// got reported.
type propertyItem struct {
	suffix  string
	value   any
	lastSet time.Time
}

func (p propertyItem) Suffix() string               { return p.suffix }
func (p propertyItem) LastSet() time.Time           { return p.lastSet }
func (p propertyItem) RefreshInterval() time.Duration { return 0 }
func (p propertyItem) Value() any                   { return p.value }
