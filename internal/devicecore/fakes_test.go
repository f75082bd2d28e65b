package devicecore

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"zigbee-go-home/internal/ncp"
)

// testLogger discards output so test runs stay quiet; set Level to Debug
// locally when chasing a failure.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAps is a scriptable ApsController. Each method call is recorded and,
// by default, reports success with an auto-incrementing ReqID; tests
// override behavior per-method via the *Fn fields to model timeouts
// (Enqueued never confirmed) or enqueue failures.
type fakeAps struct {
	mu sync.Mutex

	nextReqID uint32

	nodeDescriptorCalls   int
	activeEndpointsCalls  int
	simpleDescriptorCalls int
	zclReadCalls          int

	nodeDescriptorFn   func(key DeviceKey, nwk uint16) ApsResult
	activeEndpointsFn  func(key DeviceKey, nwk uint16) ApsResult
	simpleDescriptorFn func(key DeviceKey, nwk uint16, ep uint8) ApsResult
	zclReadFn          func(key DeviceKey, req ZclReadRequest) ApsResult
}

func (a *fakeAps) reqID() uint32 {
	a.nextReqID++
	return a.nextReqID
}

func (a *fakeAps) NodeDescriptorReq(key DeviceKey, nwk uint16) ApsResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodeDescriptorCalls++
	if a.nodeDescriptorFn != nil {
		return a.nodeDescriptorFn(key, nwk)
	}
	return ApsResult{Enqueued: true, ReqID: a.reqID()}
}

func (a *fakeAps) ActiveEndpointsReq(key DeviceKey, nwk uint16) ApsResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeEndpointsCalls++
	if a.activeEndpointsFn != nil {
		return a.activeEndpointsFn(key, nwk)
	}
	return ApsResult{Enqueued: true, ReqID: a.reqID()}
}

func (a *fakeAps) SimpleDescriptorReq(key DeviceKey, nwk uint16, ep uint8) ApsResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.simpleDescriptorCalls++
	if a.simpleDescriptorFn != nil {
		return a.simpleDescriptorFn(key, nwk, ep)
	}
	return ApsResult{Enqueued: true, ReqID: a.reqID()}
}

func (a *fakeAps) ZclReadAttributes(key DeviceKey, req ZclReadRequest, extAddr [8]byte, nwk uint16) ApsResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.zclReadCalls++
	if a.zclReadFn != nil {
		return a.zclReadFn(key, req)
	}
	return ApsResult{Enqueued: true, ReqID: a.reqID()}
}

// fakeNodes is an in-memory NodeRegistry, seeded directly by tests rather
// than populated through ApsController round-trips.
type fakeNodes struct {
	mu    sync.Mutex
	nodes map[DeviceKey]*Node
}

func newFakeNodes() *fakeNodes {
	return &fakeNodes{nodes: make(map[DeviceKey]*Node)}
}

func (n *fakeNodes) seed(key DeviceKey, node *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nodes[key] = node
}

func (n *fakeNodes) GetNode(key DeviceKey) (*Node, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	node, ok := n.nodes[key]
	return node, ok
}

func (n *fakeNodes) getOrCreate(key DeviceKey) *Node {
	node, ok := n.nodes[key]
	if !ok {
		node = &Node{SimpleDescriptors: make(map[uint8]ncp.SimpleDescriptor)}
		n.nodes[key] = node
	}
	return node
}

func (n *fakeNodes) SetNodeDescriptor(key DeviceKey, nd *ncp.NodeDescriptor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.getOrCreate(key).NodeDescriptor = nd
}

func (n *fakeNodes) SetEndpoints(key DeviceKey, eps []uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.getOrCreate(key).Endpoints = eps
}

func (n *fakeNodes) SetSimpleDescriptor(key DeviceKey, sd ncp.SimpleDescriptor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	node := n.getOrCreate(key)
	node.SimpleDescriptors[sd.Endpoint] = sd
}

func (n *fakeNodes) SetBindingTable(key DeviceKey, entries []ncp.BindingTableEntry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.getOrCreate(key).BindingTable = entries
}

// fakeDDF is a scriptable DDFEngine. RequestMatch never auto-posts a
// response — tests drive EventDDFInitResponse explicitly through the
// mailbox so scenario timing stays deterministic.
type fakeDDF struct {
	mu sync.Mutex

	matchCalls int
	lastMatch  struct{ manufacturer, model string }

	items   map[string]DDFItem // suffix -> item
	readFns map[ReadParameters]ReadFunc
}

func newFakeDDF() *fakeDDF {
	return &fakeDDF{items: make(map[string]DDFItem), readFns: make(map[ReadParameters]ReadFunc)}
}

func (f *fakeDDF) RequestMatch(mb *Mailbox, key DeviceKey, manufacturer, model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchCalls++
	f.lastMatch.manufacturer = manufacturer
	f.lastMatch.model = model
}

func (f *fakeDDF) ItemFor(key DeviceKey, suffix string) (DDFItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[suffix]
	return it, ok
}

func (f *fakeDDF) ReadFunction(params ReadParameters) (ReadFunc, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn, ok := f.readFns[params]
	return fn, ok
}

// scriptedReadFunc returns a ReadFunc yielding results in sequence, one per
// call; the last result repeats once the script is exhausted.
func scriptedReadFunc(calls *int, results ...ApsResult) ReadFunc {
	return func(aps ApsController, key DeviceKey, nwk uint16, extAddr [8]byte, ref SubDeviceRef, params ReadParameters) ApsResult {
		i := *calls
		*calls++
		if i >= len(results) {
			i = len(results) - 1
		}
		return results[i]
	}
}

// fakeItem is a static ResourceItem.
type fakeItem struct {
	suffix   string
	lastSet  time.Time
	interval time.Duration
	value    any
}

func (i *fakeItem) Suffix() string                  { return i.suffix }
func (i *fakeItem) LastSet() time.Time               { return i.lastSet }
func (i *fakeItem) RefreshInterval() time.Duration   { return i.interval }
func (i *fakeItem) Value() any                       { return i.value }

// fakeStateChange is a scriptable StateChange for item-sweep tests.
type fakeStateChange struct {
	verifyCalls int
	tickCalls   int
	done        bool
}

func (c *fakeStateChange) Verify(item ResourceItem, found bool) { c.verifyCalls++ }
func (c *fakeStateChange) Tick(aps ApsController)                { c.tickCalls++ }
func (c *fakeStateChange) Done() bool                            { return c.done }

// fakeResource is an in-memory Resource.
type fakeResource struct {
	prefix   string
	uniqueID string
	items    map[string]*fakeItem
	changes  []StateChange
	detached bool
}

func newFakeResource(prefix, uniqueID string) *fakeResource {
	return &fakeResource{prefix: prefix, uniqueID: uniqueID, items: make(map[string]*fakeItem)}
}

func (r *fakeResource) Prefix() string   { return r.prefix }
func (r *fakeResource) UniqueID() string { return r.uniqueID }

func (r *fakeResource) Item(suffix string) (ResourceItem, bool) {
	it, ok := r.items[suffix]
	if !ok {
		return nil, false
	}
	return it, true
}

func (r *fakeResource) Items() []ResourceItem {
	out := make([]ResourceItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	return out
}

func (r *fakeResource) PendingChanges() []StateChange { return r.changes }
func (r *fakeResource) GarbageCollectChanges() {
	kept := r.changes[:0]
	for _, c := range r.changes {
		if !c.Done() {
			kept = append(kept, c)
		}
	}
	r.changes = kept
}
func (r *fakeResource) DetachParent() { r.detached = true }

// fakeResourceStore resolves SubDeviceRef to the fakeResource seeded under
// the same (prefix, uniqueID).
type fakeResourceStore struct {
	mu        sync.Mutex
	resources map[SubDeviceRef]*fakeResource
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{resources: make(map[SubDeviceRef]*fakeResource)}
}

func (s *fakeResourceStore) seed(res *fakeResource) SubDeviceRef {
	ref := SubDeviceRef{Prefix: res.prefix, UniqueID: res.uniqueID}
	s.mu.Lock()
	s.resources[ref] = res
	s.mu.Unlock()
	return ref
}

func (s *fakeResourceStore) Resolve(ref SubDeviceRef) (Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resources[ref]
	if !ok {
		return nil, false
	}
	return res, true
}

// fakeSink is an EventSink that records every emitted event.
type fakeSink struct {
	mu     sync.Mutex
	events []struct {
		typ  string
		data any
	}
}

func newFakeSink() *fakeSink { return &fakeSink{} }

func (s *fakeSink) Emit(eventType string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, struct {
		typ  string
		data any
	}{eventType, data})
}

func (s *fakeSink) count(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.typ == eventType {
			n++
		}
	}
	return n
}

// drain runs every currently-queued mailbox event through dispatch,
// including events dispatch itself enqueues as a side effect (e.g.
// setState's StateEnter), stopping once the queue is empty. It never
// blocks: Mailbox.Next only blocks on an empty, open queue, which the
// Len() guard rules out.
func drain(c *Core) {
	for c.mailbox.Len() > 0 {
		ev, ok := c.mailbox.Next()
		if !ok {
			return
		}
		c.dispatch(ev)
	}
}

// seedManagedDevice creates key's Device and drives it straight into Init,
// the same as the first event Core.Admit would deliver, but stops short of
// posting the triggering Poll so tests can adjust Device fields (Reachable,
// Sleeper, ...) before the first real tick.
func seedManagedDevice(c *Core, key DeviceKey) *Device {
	d, _ := c.registry.getOrCreate(key)
	c.admit(d)
	drain(c)
	return d
}

func newTestCore(aps ApsController, nodes NodeRegistry, ddf DDFEngine, resources ResourceStore, sink EventSink) *Core {
	return New(Config{
		Logger:    testLogger(),
		Aps:       aps,
		Nodes:     nodes,
		DDF:       ddf,
		Resources: resources,
		Events:    sink,
		Managed:   true,
	})
}
