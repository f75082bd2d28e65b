// Package devicecore drives each Zigbee end-device through discovery,
// description matching, operational maintenance, and termination.
//
// It is a hierarchical, event-driven state machine: one top-level state
// per device plus two sub-state machines that run only while the
// top-level state is Idle — one verifying the binding table, the other
// polling a prioritized queue of stale attributes.
package devicecore

import "time"

// DeviceKey uniquely identifies a physical (or logical) device across its
// lifetime — usually the IEEE/MAC address.
type DeviceKey uint64

// StateLevel indexes a device's parallel state machines.
type StateLevel int

const (
	// LevelTop is the top-level device lifecycle state machine.
	LevelTop StateLevel = 0
	// LevelBinding is the binding-table verification sub-machine; active
	// only while LevelTop is Idle.
	LevelBinding StateLevel = 1
	// LevelPoll is the attribute-poll sub-machine; active only while
	// LevelTop is Idle.
	LevelPoll StateLevel = 2

	numLevels = 3
)

// EventKind is the closed set of things that can happen to a device.
type EventKind int

const (
	EventStateEnter EventKind = iota
	EventStateLeave
	EventStateTimeout
	EventPoll
	EventAwake
	EventApsConfirm
	EventNodeDescriptor
	EventActiveEndpoints
	EventSimpleDescriptor
	EventBindingTable
	EventBindingTick
	EventDDFInitRequest
	EventDDFInitResponse
	EventDDFReload

	// EventAttributeChanged is a generic attribute-change notification;
	// Event.What carries the attribute suffix (e.g. "ManufacturerName",
	// "ModelId", "Reachable", "LastSeen", "LastUpdated"), and Event.Resource
	// names the sub-device by UniqueID (empty means the Device's own item).
	EventAttributeChanged

	// EventSubDeviceAdded records a (prefix, uniqueId) sub-device
	// reference against a Device; Event.Resource carries the prefix,
	// Event.What the uniqueId. It never reaches a state handler — the
	// Core applies it directly so every mutation of Device.subDevices
	// still happens on the single event-processing goroutine.
	EventSubDeviceAdded
)

func (k EventKind) String() string {
	switch k {
	case EventStateEnter:
		return "StateEnter"
	case EventStateLeave:
		return "StateLeave"
	case EventStateTimeout:
		return "StateTimeout"
	case EventPoll:
		return "Poll"
	case EventAwake:
		return "Awake"
	case EventApsConfirm:
		return "ApsConfirm"
	case EventNodeDescriptor:
		return "NodeDescriptor"
	case EventActiveEndpoints:
		return "ActiveEndpoints"
	case EventSimpleDescriptor:
		return "SimpleDescriptor"
	case EventBindingTable:
		return "BindingTable"
	case EventBindingTick:
		return "BindingTick"
	case EventDDFInitRequest:
		return "DDFInitRequest"
	case EventDDFInitResponse:
		return "DDFInitResponse"
	case EventDDFReload:
		return "DDFReload"
	case EventAttributeChanged:
		return "AttributeChanged"
	case EventSubDeviceAdded:
		return "SubDeviceAdded"
	default:
		return "Unknown"
	}
}

// Event is an immutable descriptor of something that happened to a
// device. Num carries a numeric payload whose meaning depends on Kind:
// for StateEnter/StateLeave it is the target StateLevel; for ApsConfirm
// it is the ZDP/ZCL status (0x00 == success); for DDFInitResponse it is
// 1 (matched) or 0 (no match); for BindingTable it is the Mgmt_Bind_req
// ZDP status.
type Event struct {
	Kind     EventKind
	Resource string // originating resource handle, e.g. sub-device prefix
	What     string // attribute suffix for EventAttributeChanged; request id context otherwise
	Num      int64
	ReqID    uint32 // APS request id this event correlates to, when relevant
	Device   DeviceKey
}

const (
	// MinMacPollRxOn is the upper bound within which a mains-powered or
	// just-awoken device is expected to respond to a request.
	MinMacPollRxOn = 8000 * time.Millisecond

	// MaxPollItemRetries is the retry cap for a single PollItem.
	MaxPollItemRetries = 3

	// bindingVerifyInterval is the minimum spacing between full binding
	// table verifications for one device.
	bindingVerifyInterval = 5 * time.Minute
)

// stateEnterEvent builds a StateEnter event targeted at level.
func stateEnterEvent(key DeviceKey, level StateLevel) Event {
	return Event{Kind: EventStateEnter, Device: key, Num: int64(level)}
}

// stateLeaveEvent builds a StateLeave event targeted at level.
func stateLeaveEvent(key DeviceKey, level StateLevel) Event {
	return Event{Kind: EventStateLeave, Device: key, Num: int64(level)}
}

// stateTimeoutEvent builds a StateTimeout event for level.
func stateTimeoutEvent(key DeviceKey, level StateLevel) Event {
	return Event{Kind: EventStateTimeout, Device: key, Num: int64(level)}
}
