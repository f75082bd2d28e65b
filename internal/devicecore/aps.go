package devicecore

import (
	"context"
	"time"

	"zigbee-go-home/internal/ncp"
)

// ApsResult is the immediate (synchronous) outcome of asking the APS
// controller to enqueue a request: whether it accepted the request, and
// if so, the id that will correlate the eventual ApsConfirm.
type ApsResult struct {
	Enqueued bool
	ReqID    uint32
}

// ZclReadRequest describes one ZCL Read Attributes request.
type ZclReadRequest struct {
	Endpoint  uint8
	ClusterID uint16
	AttrIDs   []uint16
}

// ApsController is the external collaborator that actually enqueues radio
// frames (spec §6, out of scope for this package beyond this interface).
// Every method is fire-and-forget from the state machine's point of view:
// the eventual outcome is delivered back onto the Mailbox as an
// EventApsConfirm carrying the same ReqID, never returned synchronously
// from these calls (state handlers never block on I/O, spec §5).
type ApsController interface {
	NodeDescriptorReq(key DeviceKey, nwk uint16) ApsResult
	ActiveEndpointsReq(key DeviceKey, nwk uint16) ApsResult
	SimpleDescriptorReq(key DeviceKey, nwk uint16, endpoint uint8) ApsResult
	ZclReadAttributes(key DeviceKey, req ZclReadRequest, extAddr [8]byte, nwk uint16) ApsResult
}

// ncpApsAdapter adapts the blocking, context-based ncp.NCP interface into
// the fire-and-forget ApsController shape the state machine needs: each
// call spawns a goroutine that performs the blocking round-trip and posts
// the result back onto the mailbox as an ApsConfirm, the same "spawn a
// goroutine, report the outcome through the event pipe" shape as
// coordinator.DeviceManager.Interview reporting through coord.Events().
type ncpApsAdapter struct {
	ncp     ncp.NCP
	nodes   NodeRegistry
	mailbox *Mailbox
	timeout time.Duration
	nextID  func() uint32
}

// newNCPApsAdapter builds an ApsController backed by backend, posting
// confirms onto mb. Every successful ZDP response is written into nodes
// before its response event is posted, so the next verification-state
// entry (funnelled back through Init) observes the new data rather than
// looping forever. reqIDs are minted by nextID, which must be safe for
// concurrent use (see core.go's atomic counter).
func newNCPApsAdapter(backend ncp.NCP, nodes NodeRegistry, mb *Mailbox, nextID func() uint32) *ncpApsAdapter {
	return &ncpApsAdapter{ncp: backend, nodes: nodes, mailbox: mb, timeout: 10 * time.Second, nextID: nextID}
}

func (a *ncpApsAdapter) confirm(key DeviceKey, reqID uint32, err error) {
	status := int64(0x00)
	if err != nil {
		status = 0x01 // any non-zero status means failure to this layer (spec: 0x00 == success)
	}
	a.mailbox.Post(Event{Kind: EventApsConfirm, Device: key, ReqID: reqID, Num: status})
}

func (a *ncpApsAdapter) NodeDescriptorReq(key DeviceKey, nwk uint16) ApsResult {
	reqID := a.nextID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		nd, err := a.ncp.NodeDescriptor(ctx, nwk)
		if err == nil && nd != nil {
			a.nodes.SetNodeDescriptor(key, nd)
			a.mailbox.Post(Event{Kind: EventNodeDescriptor, Device: key, ReqID: reqID})
		}
		a.confirm(key, reqID, err)
	}()
	return ApsResult{Enqueued: true, ReqID: reqID}
}

func (a *ncpApsAdapter) ActiveEndpointsReq(key DeviceKey, nwk uint16) ApsResult {
	reqID := a.nextID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		eps, err := a.ncp.ActiveEndpoints(ctx, nwk)
		if err == nil && len(eps) > 0 {
			a.nodes.SetEndpoints(key, eps)
			a.mailbox.Post(Event{Kind: EventActiveEndpoints, Device: key, ReqID: reqID})
		}
		a.confirm(key, reqID, err)
	}()
	return ApsResult{Enqueued: true, ReqID: reqID}
}

func (a *ncpApsAdapter) SimpleDescriptorReq(key DeviceKey, nwk uint16, endpoint uint8) ApsResult {
	reqID := a.nextID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		sd, err := a.ncp.SimpleDescriptor(ctx, nwk, endpoint)
		if err == nil && sd != nil {
			a.nodes.SetSimpleDescriptor(key, *sd)
			a.mailbox.Post(Event{Kind: EventSimpleDescriptor, Device: key, ReqID: reqID})
		}
		a.confirm(key, reqID, err)
	}()
	return ApsResult{Enqueued: true, ReqID: reqID}
}

func (a *ncpApsAdapter) ZclReadAttributes(key DeviceKey, req ZclReadRequest, extAddr [8]byte, nwk uint16) ApsResult {
	reqID := a.nextID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		_, err := a.ncp.ReadAttributes(ctx, ncp.ReadAttributesRequest{
			DstAddr:   nwk,
			DstEP:     req.Endpoint,
			ClusterID: req.ClusterID,
			AttrIDs:   req.AttrIDs,
		})
		a.confirm(key, reqID, err)
	}()
	return ApsResult{Enqueued: true, ReqID: reqID}
}
