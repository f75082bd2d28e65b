package devicecore

import (
	"testing"
	"time"

	"zigbee-go-home/internal/ncp"
)

// TestDeviceReachable covers spec §6's reachability rule across its three
// independent paths: recently awake, mains-powered, and non-sleeper.
func TestDeviceReachable(t *testing.T) {
	now := epoch1
	tests := []struct {
		name    string
		d       Device
		node    *Node
		want    bool
	}{
		{
			name: "awake within MinMacPollRxOn",
			d:    Device{awakeTime: now.Add(-1 * time.Second)},
			node: nil,
			want: true,
		},
		{
			name: "awake but stale",
			d:    Device{awakeTime: now.Add(-9 * time.Second)},
			node: nil,
			want: false,
		},
		{
			name: "mains-powered and Reachable flag set",
			d:    Device{Reachable: true},
			node: &Node{NodeDescriptor: &ncp.NodeDescriptor{ReceiverOnWhenIdle: true}},
			want: true,
		},
		{
			name: "mains-powered but Reachable flag false",
			d:    Device{Reachable: false},
			node: &Node{NodeDescriptor: &ncp.NodeDescriptor{ReceiverOnWhenIdle: true}},
			want: false,
		},
		{
			name: "non-sleeper and Reachable flag set",
			d:    Device{Reachable: true, Sleeper: false},
			node: nil,
			want: true,
		},
		{
			name: "sleeper with Reachable flag set but not recently awake",
			d:    Device{Reachable: true, Sleeper: true},
			node: nil,
			want: false,
		},
		{
			name: "nothing satisfied",
			d:    Device{},
			node: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.reachable(now, tt.node); got != tt.want {
				t.Errorf("reachable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeviceAddSubDeviceDeduplicates(t *testing.T) {
	d := newDevice(DeviceKey(0x50))
	ref := SubDeviceRef{Prefix: "lights", UniqueID: "l1"}
	d.addSubDevice(ref)
	d.addSubDevice(ref)
	if len(d.subDevices) != 1 {
		t.Fatalf("subDevices = %v, want exactly one entry", d.subDevices)
	}
}

func TestCopyStringFromSubDevicesFirstNonEmptyWins(t *testing.T) {
	store := newFakeResourceStore()
	refA := store.seed(&fakeResource{prefix: "sensors", uniqueID: "a", items: map[string]*fakeItem{
		"ManufacturerName": {suffix: "ManufacturerName", value: "", lastSet: epoch1}, // empty: skipped
	}})
	refB := store.seed(&fakeResource{prefix: "sensors", uniqueID: "b", items: map[string]*fakeItem{
		"ManufacturerName": {suffix: "ManufacturerName", value: "Acme", lastSet: epoch1},
	}})

	got, ok := copyStringFromSubDevices(store, []SubDeviceRef{refA, refB}, "ManufacturerName")
	if !ok || got != "Acme" {
		t.Fatalf("copyStringFromSubDevices = (%q, %v), want (Acme, true)", got, ok)
	}
}

func TestCopyStringFromSubDevicesNilStore(t *testing.T) {
	if _, ok := copyStringFromSubDevices(nil, []SubDeviceRef{{Prefix: "x", UniqueID: "y"}}, "ManufacturerName"); ok {
		t.Fatal("a nil store must never report a match")
	}
}

func TestCopyStringFromSubDevicesUnsetItemSkipped(t *testing.T) {
	store := newFakeResourceStore()
	ref := store.seed(&fakeResource{prefix: "sensors", uniqueID: "a", items: map[string]*fakeItem{
		"ManufacturerName": {suffix: "ManufacturerName", value: "Acme"}, // zero LastSet: never actually set
	}})
	if _, ok := copyStringFromSubDevices(store, []SubDeviceRef{ref}, "ManufacturerName"); ok {
		t.Fatal("an item whose LastSet is zero must not be treated as a match")
	}
}

func TestFirstEndpointWithInCluster(t *testing.T) {
	node := &Node{
		Endpoints: []uint8{0x01, 0x02},
		SimpleDescriptors: map[uint8]ncp.SimpleDescriptor{
			0x01: {Endpoint: 0x01, InClusters: []uint16{0x0006}},
			0x02: {Endpoint: 0x02, InClusters: []uint16{basicClusterID}},
		},
	}
	ep, ok := firstEndpointWithInCluster(node, basicClusterID)
	if !ok || ep != 0x02 {
		t.Fatalf("firstEndpointWithInCluster = (%d, %v), want (2, true)", ep, ok)
	}

	if _, ok := firstEndpointWithInCluster(nil, basicClusterID); ok {
		t.Fatal("a nil node must never report a match")
	}
	if _, ok := firstEndpointWithInCluster(&Node{}, basicClusterID); ok {
		t.Fatal("a node with no endpoints must never report a match")
	}
}
