package devicecore

import "zigbee-go-home/internal/zcl/clusters"

const (
	attrManufacturerName uint16 = 0x0004
	attrModelIdentifier  uint16 = 0x0005
)

var basicClusterID = clusters.Basic.ID

// getNode is a nil-safe shorthand for the node registry lookup every
// top-level state needs.
func (c *Core) getNode(key DeviceKey) *Node {
	n, ok := c.nodes.GetNode(key)
	if !ok {
		return nil
	}
	return n
}

// stateInit is assigned in init rather than by an initializer: topInit
// reaches stateNodeDescriptor, whose handler refers back to stateInit, and
// Go rejects such initialization cycles.
var stateInit *StateHandler

func init() {
	stateInit = &StateHandler{name: "Init", handle: topInit}
}

// topInit implements spec §4.2 Init: it elides the coordinator and Green
// Power devices straight to Dead, and otherwise waits for any of the
// listed events to notice the node is ready to proceed.
func topInit(c *Core, d *Device, ev Event) {
	if ev.Kind == EventStateEnter {
		node := c.getNode(d.key)
		if node != nil && node.NwkAddress == 0 {
			c.setState(d, LevelTop, stateDead)
			return
		}
		// Open question (spec §9): the ZGP predicate is preserved verbatim.
		if node == nil && uint64(d.key)&0xFFFFFFFF00000000 == 0 {
			c.setState(d, LevelTop, stateDead)
			return
		}
		return
	}

	reachableChanged := ev.Kind == EventAttributeChanged && (ev.What == "Reachable" || ev.What == "LastUpdated")
	if !(ev.Kind == EventPoll || ev.Kind == EventAwake || ev.Kind == EventStateTimeout || reachableChanged) {
		return
	}

	node := c.getNode(d.key)
	if node != nil {
		d.ExtAddress = node.ExtAddress
		d.NwkAddress = node.NwkAddress
	}
	if node != nil && (node.NodeDescriptor != nil || d.reachable(c.now(), node)) {
		c.setState(d, LevelTop, stateNodeDescriptor)
	}
}

// zdpProbe describes one of the three ZDP verification states
// (NodeDescriptor, ActiveEndpoints, SimpleDescriptor), which all share
// the same shape with a different probe (spec §4.2).
type zdpProbe struct {
	satisfied    func(node *Node) bool
	forward      *StateHandler
	issue        func(c *Core, d *Device, node *Node, nwk uint16) ApsResult
	responseKind EventKind
}

func zdpProbeHandler(p zdpProbe) func(c *Core, d *Device, ev Event) {
	return func(c *Core, d *Device, ev Event) {
		if ev.Kind == p.responseKind {
			d.timers.cancel(LevelTop)
			c.setState(d, LevelTop, stateInit)
			c.mailbox.Post(Event{Kind: EventAwake, Device: d.key})
			return
		}
		switch ev.Kind {
		case EventStateEnter:
			node := c.getNode(d.key)
			if p.satisfied(node) {
				c.setState(d, LevelTop, p.forward)
				return
			}
			if !d.reachable(c.now(), node) {
				c.setState(d, LevelTop, stateInit)
				return
			}
			nwk := uint16(0)
			if node != nil {
				nwk = node.NwkAddress
			}
			res := p.issue(c, d, node, nwk)
			if !res.Enqueued {
				c.setState(d, LevelTop, stateInit)
				return
			}
			d.pendingZdp = pendingRequest{apsReqID: res.ReqID, enqueued: true}
			d.timers.arm(c.mailbox, d.key, LevelTop, MinMacPollRxOn)
		case EventApsConfirm:
			if d.pendingZdp.matches(ev.ReqID) && ev.Num != 0 {
				c.setState(d, LevelTop, stateInit)
			}
		case EventStateTimeout:
			c.setState(d, LevelTop, stateInit)
		}
	}
}

var stateNodeDescriptor = &StateHandler{name: "NodeDescriptor", handle: zdpProbeHandler(zdpProbe{
	satisfied: func(node *Node) bool { return node != nil && node.NodeDescriptor != nil },
	forward:   stateActiveEndpoints,
	issue: func(c *Core, d *Device, node *Node, nwk uint16) ApsResult {
		return c.aps.NodeDescriptorReq(d.key, nwk)
	},
	responseKind: EventNodeDescriptor,
})}

var stateActiveEndpoints = &StateHandler{name: "ActiveEndpoints", handle: zdpProbeHandler(zdpProbe{
	satisfied: func(node *Node) bool { return node != nil && len(node.Endpoints) > 0 },
	forward:   stateSimpleDescriptor,
	issue: func(c *Core, d *Device, node *Node, nwk uint16) ApsResult {
		return c.aps.ActiveEndpointsReq(d.key, nwk)
	},
	responseKind: EventActiveEndpoints,
})}

var stateSimpleDescriptor = &StateHandler{name: "SimpleDescriptor", handle: zdpProbeHandler(zdpProbe{
	satisfied: func(node *Node) bool { return node != nil && node.allSimpleDescriptorsValid() },
	forward:   stateBasicCluster,
	issue: func(c *Core, d *Device, node *Node, nwk uint16) ApsResult {
		if node == nil {
			return ApsResult{Enqueued: false}
		}
		ep, ok := node.firstEndpointMissingSimpleDescriptor()
		if !ok {
			return ApsResult{Enqueued: false}
		}
		return c.aps.SimpleDescriptorReq(d.key, nwk, ep)
	},
	responseKind: EventSimpleDescriptor,
})}

var stateBasicCluster = &StateHandler{name: "BasicCluster", handle: topBasicCluster}

type basicClusterItem struct {
	suffix string
	attrID uint16
	get    func(d *Device) string
	set    func(d *Device, v string)
}

var basicClusterItems = []basicClusterItem{
	{
		suffix: "ManufacturerName",
		attrID: attrManufacturerName,
		get:    func(d *Device) string { return d.ManufacturerName },
		set:    func(d *Device, v string) { d.ManufacturerName = v },
	},
	{
		suffix: "ModelId",
		attrID: attrModelIdentifier,
		get:    func(d *Device) string { return d.ModelID },
		set:    func(d *Device, v string) { d.ModelID = v },
	},
}

// topBasicCluster implements spec §4.2 BasicCluster: fill order is
// deterministic (ManufacturerName then ModelId), each item first tries a
// sub-device copy, then a ZCL read. The open question in spec §9 is
// preserved verbatim: the item loop breaks on the first failed-to-enqueue
// read rather than continuing to the next item.
func topBasicCluster(c *Core, d *Device, ev Event) {
	switch ev.Kind {
	case EventStateEnter:
		basicClusterAdvance(c, d)
	case EventAttributeChanged:
		if ev.What == "ManufacturerName" || ev.What == "ModelId" {
			c.setState(d, LevelTop, stateInit)
		}
	case EventStateTimeout:
		c.setState(d, LevelTop, stateInit)
	case EventApsConfirm:
		if d.pendingRead.matches(ev.ReqID) {
			d.timers.cancel(LevelTop)
			if ev.Num != 0 {
				c.setState(d, LevelTop, stateInit)
			}
		}
	}
}

func basicClusterAdvance(c *Core, d *Device) {
	node := c.getNode(d.key)
	for _, item := range basicClusterItems {
		if item.get(d) != "" {
			continue
		}
		if v, ok := copyStringFromSubDevices(c.resources, d.subDevices, item.suffix); ok {
			item.set(d, v)
			continue
		}
		ep, ok := firstEndpointWithInCluster(node, basicClusterID)
		if !ok {
			c.setState(d, LevelTop, stateInit)
			return
		}
		res := c.aps.ZclReadAttributes(d.key, ZclReadRequest{
			Endpoint:  ep,
			ClusterID: basicClusterID,
			AttrIDs:   []uint16{item.attrID},
		}, d.ExtAddress, d.NwkAddress)
		if !res.Enqueued {
			c.setState(d, LevelTop, stateInit)
			return
		}
		d.pendingRead = pendingRequest{apsReqID: res.ReqID, enqueued: true}
		d.timers.arm(c.mailbox, d.key, LevelTop, MinMacPollRxOn)
		return
	}
	c.setState(d, LevelTop, stateGetDeviceDescription)
}

var stateGetDeviceDescription = &StateHandler{name: "GetDeviceDescription", handle: topGetDeviceDescription}

// topGetDeviceDescription implements spec §4.2 GetDeviceDescription: the
// DDF engine is an external async collaborator, so the core only emits
// the request and waits for DDFInitResponse on the mailbox.
func topGetDeviceDescription(c *Core, d *Device, ev Event) {
	switch ev.Kind {
	case EventStateEnter:
		c.mailbox.Post(Event{Kind: EventDDFInitRequest, Device: d.key})
		c.ddf.RequestMatch(c.mailbox, d.key, d.ManufacturerName, d.ModelID)
	case EventDDFInitResponse:
		if ev.Num == 1 {
			c.setState(d, LevelTop, stateIdle)
		} else {
			c.setState(d, LevelTop, stateDead)
		}
	}
}

var stateIdle = &StateHandler{name: "Idle", handle: topIdle}

// topIdle implements spec §4.2 Idle: it owns installing/clearing the two
// sub-machines, restarts on DDFReload, and otherwise runs the
// Item-Change Sweep (§4.5) before forwarding every event to both
// sub-machines.
func topIdle(c *Core, d *Device, ev Event) {
	switch ev.Kind {
	case EventStateEnter:
		c.setState(d, LevelBinding, stateBindingIdle)
		c.setState(d, LevelPoll, statePollIdle)
		return
	case EventStateLeave:
		c.setState(d, LevelBinding, nil)
		c.setState(d, LevelPoll, nil)
		return
	case EventDDFReload:
		c.setState(d, LevelTop, stateInit)
		return
	}
	sweepItemChanges(c, d, ev)
	c.handleEvent(d, LevelBinding, ev)
	c.handleEvent(d, LevelPoll, ev)
}

var stateDead = &StateHandler{name: "Dead", handle: topDead}

// topDead implements spec §4.2 Dead: terminal, logs on entry, ignores
// everything else. Removal is driven externally (Core.Remove).
func topDead(c *Core, d *Device, ev Event) {
	if ev.Kind == EventStateEnter {
		c.logger.Info("device dead", "device", deviceKeyHex(d.key))
	}
}
