package devicecore

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"zigbee-go-home/internal/ncp"
)

// EventSink forwards observability records to the rest of the gateway
// (MQTT bridge, websocket push) without this package importing
// internal/coordinator — which owns the Core instance and would
// otherwise create an import cycle. Its shape mirrors
// coordinator.EventBus.Emit, letting the coordinator wire a thin adapter
// around its existing bus.
type EventSink interface {
	Emit(eventType string, data any)
}

// Config collects Core's external collaborators (spec §6) and the
// managed gate (spec §6: "one runtime option — a boolean managed flag").
type Config struct {
	Logger    *slog.Logger
	Aps       ApsController
	Nodes     NodeRegistry
	DDF       DDFEngine
	Resources ResourceStore
	Events    EventSink
	Managed   bool
}

// Core wires the dispatcher, registry, and mailbox to the external
// collaborators and owns the single event-processing goroutine (spec
// §5: "the entire core runs on one event-processing thread").
type Core struct {
	logger    *slog.Logger
	mailbox   *Mailbox
	registry  *Registry
	aps       ApsController
	nodes     NodeRegistry
	ddf       DDFEngine
	resources ResourceStore
	events    EventSink

	managed bool

	nextReqID atomic.Uint32

	stopOnce sync.Once
	done     chan struct{}

	// snapMu guards snapshots, the only Device state visible to
	// goroutines other than Run's. Device itself carries no internal
	// lock (spec §5: owned exclusively by the event-processing
	// goroutine), so cross-goroutine readers never touch it directly —
	// they read a copy refreshed by dispatch after every event, the
	// same "dedicated mutex for the cross-goroutine view" shape as
	// DeviceManager's addrMu-guarded address cache.
	snapMu    sync.RWMutex
	snapshots map[DeviceKey]DeviceSnapshot
}

// New builds a Core. Callers must call Run (in its own goroutine) to
// begin processing, and Stop to shut it down.
func New(cfg Config) *Core {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Core{
		logger:    logger.With("component", "devicecore"),
		mailbox:   NewMailbox(),
		registry:  NewRegistry(),
		aps:       cfg.Aps,
		nodes:     cfg.Nodes,
		ddf:       cfg.DDF,
		resources: cfg.Resources,
		events:    cfg.Events,
		managed:   cfg.Managed,
		done:      make(chan struct{}),
		snapshots: make(map[DeviceKey]DeviceSnapshot),
	}
}

// NewNCPCore builds a Core whose ApsController is the fire-and-forget
// adapter over backend (aps.go's ncpApsAdapter), so callers only need to
// supply the node registry, DDF engine, and resource store in cfg.
func NewNCPCore(cfg Config, backend ncp.NCP) *Core {
	c := New(cfg)
	c.aps = newNCPApsAdapter(backend, cfg.Nodes, c.mailbox, c.nextApsReqID)
	return c
}

func (c *Core) now() time.Time { return time.Now() }

func (c *Core) nextApsReqID() uint32 { return c.nextReqID.Add(1) }

func (c *Core) emit(eventType string, data any) {
	if c.events == nil {
		return
	}
	c.events.Emit(eventType, data)
}

func deviceKeyHex(key DeviceKey) string {
	return strconv.FormatUint(uint64(key), 16)
}

// Run drains the mailbox until Stop closes it, dispatching each event to
// its device. Call it from its own goroutine; it returns once the
// mailbox has fully drained after Stop.
func (c *Core) Run() {
	for {
		ev, ok := c.mailbox.Next()
		if !ok {
			close(c.done)
			return
		}
		c.dispatch(ev)
	}
}

// Stop closes the mailbox and blocks until Run has drained it.
func (c *Core) Stop() {
	c.stopOnce.Do(func() {
		c.mailbox.Close()
	})
	<-c.done
}

// Admit injects a newly-discovered DeviceKey into the core (spec §1's
// lower layer that "injects a DeviceKey"), kicking off Init via a
// synthetic Poll.
func (c *Core) Admit(key DeviceKey) {
	c.mailbox.Post(Event{Kind: EventPoll, Device: key})
}

// Remove destroys the device for key (spec §4.6), detaching its
// sub-devices without destroying them.
func (c *Core) Remove(key DeviceKey) {
	c.registry.remove(key, c.resources)
	c.snapMu.Lock()
	delete(c.snapshots, key)
	c.snapMu.Unlock()
}

// NotifyAttributeChanged posts an EventAttributeChanged for key, naming
// the sub-device (by UniqueID; empty means the device's own attribute
// item, e.g. Reachable) and the suffix that changed. External writers —
// the ZCL attribute pipeline, a confirmed user-initiated write — call
// this instead of mutating Device fields directly, so every device
// mutation still happens on the single event-processing goroutine (spec
// §5: "any mutation from outside must be observable through events, not
// direct memory").
func (c *Core) NotifyAttributeChanged(key DeviceKey, subDeviceUniqueID, suffix string) {
	c.mailbox.Post(Event{Kind: EventAttributeChanged, Device: key, Resource: subDeviceUniqueID, What: suffix})
}

// NotifyPoll posts a Poll event for key: the periodic tick that drives
// Init's progress check, the binding cadence, and the poll scan.
func (c *Core) NotifyPoll(key DeviceKey) {
	c.mailbox.Post(Event{Kind: EventPoll, Device: key})
}

// NotifyDDFReload posts a DDFReload event for key.
func (c *Core) NotifyDDFReload(key DeviceKey) {
	c.mailbox.Post(Event{Kind: EventDDFReload, Device: key})
}

// RegisterSubDevice records ref against key's Device. The mutation is
// applied on the event-processing goroutine (via EventSubDeviceAdded),
// not here, so it never races a concurrent handleEvent call for the
// same Device (spec §5: the Device owns its fields exclusively).
func (c *Core) RegisterSubDevice(key DeviceKey, ref SubDeviceRef) {
	c.mailbox.Post(Event{Kind: EventSubDeviceAdded, Device: key, Resource: ref.Prefix, What: ref.UniqueID})
}

// DeviceSnapshot is a read-only copy of a Device's externally-visible
// fields, safe to hand to callers outside the event-processing goroutine
// (the MQTT bridge, the websocket API) without exposing *Device itself.
type DeviceSnapshot struct {
	Key              DeviceKey
	UniqueID         string
	ManufacturerName string
	ModelID          string
	Sleeper          bool
	Reachable        bool
	Managed          bool
	TopState         string
}

// Snapshot returns the last-published DeviceSnapshot for key. Safe to
// call from any goroutine.
func (c *Core) Snapshot(key DeviceKey) (DeviceSnapshot, bool) {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	snap, ok := c.snapshots[key]
	return snap, ok
}

// publishSnapshot refreshes key's cross-goroutine-visible snapshot, and
// emits device_state_changed (SPEC_FULL §11's mqtt/websocket wiring)
// whenever the top-level state name or reachability actually moved, so
// the MQTT bridge and /ws both learn about Init/Idle/Dead transitions
// without either importing devicecore. Called only from dispatch, after
// the event-processing goroutine has finished mutating d.
func (c *Core) publishSnapshot(d *Device) {
	top := ""
	if h := d.state[LevelTop]; h != nil {
		top = h.String()
	}
	snap := DeviceSnapshot{
		Key:              d.key,
		UniqueID:         d.UniqueID,
		ManufacturerName: d.ManufacturerName,
		ModelID:          d.ModelID,
		Sleeper:          d.Sleeper,
		Reachable:        d.Reachable,
		Managed:          d.managed,
		TopState:         top,
	}

	c.snapMu.Lock()
	prev, had := c.snapshots[d.key]
	c.snapshots[d.key] = snap
	c.snapMu.Unlock()

	if had && prev.TopState == snap.TopState && prev.Reachable == snap.Reachable {
		return
	}
	// A plain map, not a typed struct: every other EventBus payload in
	// this codebase (attribute_report, property_update, ...) is
	// map[string]interface{}, and consumers like the MQTT bridge type-
	// assert against that shape rather than importing devicecore.
	c.emit("device_state_changed", map[string]interface{}{
		"device":    deviceKeyHex(d.key),
		"state":     snap.TopState,
		"reachable": snap.Reachable,
	})
}

// admit drives a freshly-created Device into Init. Only called from
// dispatch, i.e. on the event-processing goroutine.
func (c *Core) admit(d *Device) {
	d.managed = c.managed
	if !d.managed {
		return
	}
	c.setState(d, LevelTop, stateInit)
}

// dispatch routes one mailbox event to its device, creating the device
// on first contact.
func (c *Core) dispatch(ev Event) {
	d, created := c.registry.getOrCreate(ev.Device)
	if created {
		c.admit(d)
	}
	if !d.managed {
		return
	}

	switch ev.Kind {
	case EventStateEnter, EventStateLeave, EventStateTimeout:
		c.handleEvent(d, StateLevel(ev.Num), ev)
	case EventSubDeviceAdded:
		d.addSubDevice(SubDeviceRef{Prefix: ev.Resource, UniqueID: ev.What})
	case EventAwake:
		d.awakeTime = c.now()
		c.handleEvent(d, LevelTop, ev)
	default:
		c.handleEvent(d, LevelTop, ev)
	}
	c.publishSnapshot(d)
}
