package coordinator

import (
	"strconv"

	"zigbee-go-home/internal/devicecore"
)

// eventSinkAdapter satisfies devicecore.EventSink by forwarding onto the
// coordinator's own EventBus, so devicecore never needs to import
// internal/coordinator itself (which owns the *devicecore.Core and would
// otherwise create an import cycle).
type eventSinkAdapter struct {
	bus *EventBus
}

func (a eventSinkAdapter) Emit(eventType string, data any) {
	a.bus.Emit(Event{Type: eventType, Data: data})
}

// deviceKeyFromIEEE parses a "%016X"-formatted IEEE address (the same
// format HandleJoin/HandleAnnounce/HandleLeave already use as the store
// key) into a devicecore.DeviceKey.
func deviceKeyFromIEEE(ieee string) (devicecore.DeviceKey, bool) {
	v, err := strconv.ParseUint(ieee, 16, 64)
	if err != nil {
		return 0, false
	}
	return devicecore.DeviceKey(v), true
}

// DevicecoreConfig selects whether the coordinator drives joined devices
// through devicecore's hierarchical state machine, and supplies its
// external collaborators. Managed mirrors devicecore's own "global state"
// runtime gate: when false, Core still runs but every admitted Device sits
// inert (spec: devicecore.Config.Managed), so toggling this on does not
// require restructuring how devices are discovered.
type DevicecoreConfig struct {
	Managed bool
	Nodes   devicecore.NodeRegistry
	DDF     devicecore.DDFEngine
}

// startDevicecore constructs and runs the devicecore.Core for this
// coordinator, if cfg.Nodes/DDF were supplied. Call once from New.
func (c *Coordinator) startDevicecore(cfg DevicecoreConfig) {
	if cfg.Nodes == nil || cfg.DDF == nil {
		return
	}
	c.devicecoreManaged = cfg.Managed
	c.deviceCore = devicecore.NewNCPCore(devicecore.Config{
		Logger:    c.logger,
		Nodes:     cfg.Nodes,
		DDF:       cfg.DDF,
		Resources: c.resources,
		Events:    eventSinkAdapter{bus: c.events},
		Managed:   cfg.Managed,
	}, c.ncp)
	go c.deviceCore.Run()
}

// admitDevicecore injects key into devicecore, a no-op if devicecore was
// never started.
func (c *Coordinator) admitDevicecore(ieee string) {
	if c.deviceCore == nil {
		return
	}
	key, ok := deviceKeyFromIEEE(ieee)
	if !ok {
		return
	}
	c.deviceCore.Admit(key)
}

func (c *Coordinator) removeDevicecore(ieee string) {
	if c.deviceCore == nil {
		return
	}
	key, ok := deviceKeyFromIEEE(ieee)
	if !ok {
		return
	}
	c.deviceCore.Remove(key)
}

// registerDevicecoreEndpoint tells devicecore about a discovered endpoint so
// its poll/item-sweep logic has a sub-device to scan. No-op if devicecore
// was never started.
func (c *Coordinator) registerDevicecoreEndpoint(ieee string, ep uint8) {
	if c.deviceCore == nil {
		return
	}
	key, ok := deviceKeyFromIEEE(ieee)
	if !ok {
		return
	}
	c.deviceCore.RegisterSubDevice(key, endpointRef(ieee, ep))
}

func (c *Coordinator) notifyDevicecoreAttribute(ieee string, ep uint8, suffix string) {
	if c.deviceCore == nil {
		return
	}
	key, ok := deviceKeyFromIEEE(ieee)
	if !ok {
		return
	}
	c.deviceCore.NotifyAttributeChanged(key, endpointRef(ieee, ep).UniqueID, suffix)
}
