package devicecore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	bolt "go.etcd.io/bbolt"

	"zigbee-go-home/internal/ncp"
)

// Node mirrors the facts the core needs about a physical node: its
// addresses and the ZDP data gathered so far. It is populated
// incrementally as ZDP responses arrive; a nil NodeDescriptor or empty
// Endpoints/SimpleDescriptors means "not yet known."
type Node struct {
	NwkAddress        uint16
	ExtAddress        [8]byte
	NodeDescriptor    *ncp.NodeDescriptor
	Endpoints         []uint8
	SimpleDescriptors map[uint8]ncp.SimpleDescriptor
	BindingTable      []ncp.BindingTableEntry
}

// allSimpleDescriptorsValid reports whether every known endpoint has a
// simple descriptor with a device id other than the Zigbee "invalid"
// sentinel 0xFFFF (spec §4.2 SimpleDescriptor state).
func (n *Node) allSimpleDescriptorsValid() bool {
	if len(n.Endpoints) == 0 {
		return false
	}
	for _, ep := range n.Endpoints {
		sd, ok := n.SimpleDescriptors[ep]
		if !ok || sd.DeviceID == 0xFFFF {
			return false
		}
	}
	return true
}

func (n *Node) firstEndpointMissingSimpleDescriptor() (uint8, bool) {
	for _, ep := range n.Endpoints {
		if _, ok := n.SimpleDescriptors[ep]; !ok {
			return ep, true
		}
	}
	return 0, false
}

// NodeRegistry is the external node registry consumed by the core (spec
// §6): read on the event thread, mutated as ZDP responses land.
type NodeRegistry interface {
	GetNode(key DeviceKey) (*Node, bool)
	SetNodeDescriptor(key DeviceKey, nd *ncp.NodeDescriptor)
	SetEndpoints(key DeviceKey, eps []uint8)
	SetSimpleDescriptor(key DeviceKey, sd ncp.SimpleDescriptor)
	SetBindingTable(key DeviceKey, entries []ncp.BindingTableEntry)
}

// BoltNodeRegistry persists discovered node facts in a bbolt bucket so
// that a restarted core does not re-run ZDP discovery for nodes it
// already knows about, the same JSON-blob-per-key shape as
// store.BoltStore's device bucket.
type BoltNodeRegistry struct {
	db *bolt.DB

	mu    sync.RWMutex
	cache map[DeviceKey]*Node
}

var bucketNodes = []byte("devicecore_nodes")

// nodeRecord is the JSON-serializable form of Node (ncp.NodeDescriptor's
// zero value already round-trips through JSON cleanly).
type nodeRecord struct {
	NwkAddress        uint16                       `json:"nwk_address"`
	ExtAddress        [8]byte                      `json:"ext_address"`
	NodeDescriptor    *ncp.NodeDescriptor          `json:"node_descriptor,omitempty"`
	Endpoints         []uint8                      `json:"endpoints,omitempty"`
	SimpleDescriptors map[uint8]ncp.SimpleDescriptor `json:"simple_descriptors,omitempty"`
	BindingTable      []ncp.BindingTableEntry      `json:"binding_table,omitempty"`
}

// NewBoltNodeRegistry opens (creating if needed) the node bucket on an
// already-open bbolt database, e.g. the same *bolt.DB backing
// store.BoltStore, so the gateway keeps a single database file.
func NewBoltNodeRegistry(db *bolt.DB) (*BoltNodeRegistry, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNodes)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create node bucket: %w", err)
	}
	r := &BoltNodeRegistry{db: db, cache: make(map[DeviceKey]*Node)}
	if err := r.preload(); err != nil {
		return nil, fmt.Errorf("preload nodes: %w", err)
	}
	return r, nil
}

func (r *BoltNodeRegistry) preload() error {
	return r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			keyInt, err := strconv.ParseUint(string(k), 16, 64)
			if err != nil {
				return nil // skip malformed key rather than fail the whole load
			}
			var rec nodeRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			r.cache[DeviceKey(keyInt)] = recordToNode(&rec)
			return nil
		})
	})
}

func recordToNode(rec *nodeRecord) *Node {
	n := &Node{
		NwkAddress:        rec.NwkAddress,
		ExtAddress:        rec.ExtAddress,
		NodeDescriptor:    rec.NodeDescriptor,
		Endpoints:         rec.Endpoints,
		SimpleDescriptors: rec.SimpleDescriptors,
		BindingTable:      rec.BindingTable,
	}
	if n.SimpleDescriptors == nil {
		n.SimpleDescriptors = make(map[uint8]ncp.SimpleDescriptor)
	}
	return n
}

func (r *BoltNodeRegistry) persist(key DeviceKey, n *Node) error {
	rec := nodeRecord{
		NwkAddress:        n.NwkAddress,
		ExtAddress:        n.ExtAddress,
		NodeDescriptor:    n.NodeDescriptor,
		Endpoints:         n.Endpoints,
		SimpleDescriptors: n.SimpleDescriptors,
		BindingTable:      n.BindingTable,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	k := strconv.FormatUint(uint64(key), 16)
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		if b == nil {
			return fmt.Errorf("bucket %q not found", bucketNodes)
		}
		return b.Put([]byte(k), data)
	})
}

// GetNode returns the cached node facts for key, if any exist yet.
func (r *BoltNodeRegistry) GetNode(key DeviceKey) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.cache[key]
	return n, ok
}

func (r *BoltNodeRegistry) getOrCreateLocked(key DeviceKey) *Node {
	n, ok := r.cache[key]
	if !ok {
		n = &Node{SimpleDescriptors: make(map[uint8]ncp.SimpleDescriptor)}
		r.cache[key] = n
	}
	return n
}

func (r *BoltNodeRegistry) SetNodeDescriptor(key DeviceKey, nd *ncp.NodeDescriptor) {
	r.mu.Lock()
	n := r.getOrCreateLocked(key)
	n.NodeDescriptor = nd
	cp := *n
	r.mu.Unlock()
	_ = r.persist(key, &cp)
}

func (r *BoltNodeRegistry) SetEndpoints(key DeviceKey, eps []uint8) {
	r.mu.Lock()
	n := r.getOrCreateLocked(key)
	n.Endpoints = eps
	cp := *n
	r.mu.Unlock()
	_ = r.persist(key, &cp)
}

func (r *BoltNodeRegistry) SetSimpleDescriptor(key DeviceKey, sd ncp.SimpleDescriptor) {
	r.mu.Lock()
	n := r.getOrCreateLocked(key)
	n.SimpleDescriptors[sd.Endpoint] = sd
	cp := *n
	r.mu.Unlock()
	_ = r.persist(key, &cp)
}

func (r *BoltNodeRegistry) SetBindingTable(key DeviceKey, entries []ncp.BindingTableEntry) {
	r.mu.Lock()
	n := r.getOrCreateLocked(key)
	n.BindingTable = entries
	cp := *n
	r.mu.Unlock()
	_ = r.persist(key, &cp)
}
