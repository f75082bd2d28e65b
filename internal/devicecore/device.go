package devicecore

import "time"

// pendingRequest tracks one in-flight ZDP/ZCL round-trip: the APS request
// id the device expects a confirm for, and whether the enqueue itself
// succeeded (spec I3).
type pendingRequest struct {
	apsReqID uint32
	enqueued bool
}

func (p pendingRequest) matches(reqID uint32) bool {
	return p.enqueued && p.apsReqID == reqID
}

// bindingContext is the per-device cursor and cadence state for the
// binding sub-machine (spec §2.5).
type bindingContext struct {
	iter              int
	mgmtBindSupported bool
	lastVerify        time.Time
}

// Device is the aggregate the core drives through discovery, description
// matching, operational maintenance, and termination. Every field is
// touched only from the Core's single event-processing goroutine; no
// internal locking is needed (spec §5).
type Device struct {
	key DeviceKey

	state  [numLevels]*StateHandler
	timers *TimerSet

	// subDevices holds stable (prefix, uniqueId) identity only; live
	// handles are always re-resolved through a ResourceStore (spec I6).
	subDevices []SubDeviceRef

	awakeTime time.Time

	pollQueue []PollItem
	binding   bindingContext

	pendingZdp  pendingRequest
	pendingRead pendingRequest

	// managed gates whether this core drives the device at all; devices
	// left on the legacy path have this unset, never receive a top-level
	// state, and have every event ignored by dispatch (see core.go).
	managed bool

	ExtAddress       [8]byte
	NwkAddress       uint16
	UniqueID         string
	ManufacturerName string
	ModelID          string
	Sleeper          bool
	Reachable        bool
}

func newDevice(key DeviceKey) *Device {
	return &Device{key: key, timers: newTimerSet()}
}

// reachable implements the reachability rule of spec §6: awake within
// MinMacPollRxOn, or mains-powered with the stored Reachable flag, or a
// non-sleeper with the stored Reachable flag.
func (d *Device) reachable(now time.Time, node *Node) bool {
	if !d.awakeTime.IsZero() && now.Sub(d.awakeTime) < MinMacPollRxOn {
		return true
	}
	mainsPowered := node != nil && node.NodeDescriptor != nil && node.NodeDescriptor.ReceiverOnWhenIdle
	if mainsPowered && d.Reachable {
		return true
	}
	if !d.Sleeper && d.Reachable {
		return true
	}
	return false
}

// addSubDevice records ref if not already present.
func (d *Device) addSubDevice(ref SubDeviceRef) {
	for _, existing := range d.subDevices {
		if existing == ref {
			return
		}
	}
	d.subDevices = append(d.subDevices, ref)
}

// copyStringFromSubDevices scans the device's sub-devices for an item
// named suffix that already carries a non-empty string value, returning
// the first match (spec §4.2 BasicCluster: "first attempt to copy from
// any sub-device that already carries it").
func copyStringFromSubDevices(store ResourceStore, refs []SubDeviceRef, suffix string) (string, bool) {
	if store == nil {
		return "", false
	}
	for _, ref := range refs {
		res, ok := store.Resolve(ref)
		if !ok {
			continue
		}
		item, ok := res.Item(suffix)
		if !ok || item.LastSet().IsZero() {
			continue
		}
		if s, ok := item.Value().(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// firstEndpointWithInCluster returns the first endpoint on node whose
// simple descriptor lists clusterID as an input cluster.
func firstEndpointWithInCluster(node *Node, clusterID uint16) (uint8, bool) {
	if node == nil {
		return 0, false
	}
	for _, ep := range node.Endpoints {
		sd, ok := node.SimpleDescriptors[ep]
		if !ok {
			continue
		}
		for _, in := range sd.InClusters {
			if in == clusterID {
				return ep, true
			}
		}
	}
	return 0, false
}
