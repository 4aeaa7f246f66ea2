// Package forwarder implements the single receive-loop body that ties the
// codec, fragment, and routing packages together: decode, deliver-or-route,
// fragment, forward.
package forwarder

import (
	"sync"
	"time"

	"github.com/arjunvale/udprouter/pkg/common"
	"github.com/arjunvale/udprouter/pkg/datagram"
	"github.com/arjunvale/udprouter/pkg/fragment"
	"github.com/arjunvale/udprouter/pkg/metrics"
	"github.com/arjunvale/udprouter/pkg/routing"
	"github.com/prometheus/client_golang/prometheus"
)

// group is the accumulated fragment train for one in-flight datagram ID
// destined for this router, plus the arrival time of its first fragment
// (used only by the optional GroupTTL eviction).
type group struct {
	fragments []string
	firstSeen time.Time
}

// Forwarder owns the fragment-group store for datagrams destined to
// SelfAddr and drives forwarding decisions against a routing.Table. It has
// no transport of its own: HandlePacket is called with already-received
// bytes, and emits outbound work through the deliver/send callbacks, which
// keeps it testable without sockets.
type Forwarder struct {
	SelfAddr common.Endpoint
	Table    *routing.Table

	// GroupTTL, when non-zero, bounds how long an incomplete fragment
	// group is retained before it is evicted. Zero (the default)
	// disables eviction; an operator opts in explicitly.
	GroupTTL time.Duration

	mu     sync.Mutex
	groups map[string]*group

	// Log receives diagnostic events for delivered/forwarded/dropped
	// packets. fields holds structured values (e.g. "dst", "next_hop")
	// rather than a pre-formatted string, so a logrus-backed
	// implementation can keep them queryable instead of collapsing them
	// into one line. Defaults to a no-op if nil.
	Log func(msg string, fields map[string]interface{})
}

// NewForwarder creates a Forwarder listening as selfAddr and routing
// through table.
func NewForwarder(selfAddr common.Endpoint, table *routing.Table) *Forwarder {
	return &Forwarder{
		SelfAddr: selfAddr,
		Table:    table,
		groups:   make(map[string]*group),
	}
}

func (f *Forwarder) logf(msg string, fields map[string]interface{}) {
	if f.Log != nil {
		f.Log(msg, fields)
	}
}

// HandlePacket implements one iteration of the receive loop body: parse,
// drop-on-malformed, drop-on-expired-ttl, then either accumulate-and-maybe-
// deliver (destination is this router) or route-and-forward (transit).
//
// deliver is called once per fully reassembled payload addressed to this
// router. send is called once per outbound fragment produced for a
// transit datagram, in order.
func (f *Forwarder) HandlePacket(data []byte, deliver func(payload []byte), send func(to routing.NextHop, wire string)) {
	wire := string(data)

	d, err := datagram.Decode(wire)
	if err != nil {
		f.logf("dropping malformed packet", map[string]interface{}{"error": err})
		metrics.DroppedTotal.With(prometheus.Labels{"reason": metrics.ReasonMalformedHeader}).Inc()
		return
	}

	if d.TTL <= 0 {
		metrics.DroppedTotal.With(prometheus.Labels{"reason": metrics.ReasonTTLExpired}).Inc()
		return
	}

	if d.Destination() == f.SelfAddr {
		f.receiveLocal(wire, d.ID, deliver)
		return
	}

	f.forward(d, send)
}

func (f *Forwarder) receiveLocal(wire, id string, deliver func(payload []byte)) {
	f.mu.Lock()
	g, ok := f.groups[id]
	if !ok {
		g = &group{firstSeen: time.Now()}
		f.groups[id] = g
	}
	g.fragments = append(g.fragments, wire)
	fragments := append([]string(nil), g.fragments...)
	metrics.OpenFragmentGroups.Set(float64(len(f.groups)))
	f.mu.Unlock()

	reassembled, complete, err := fragment.Reassemble(fragments)
	if err != nil {
		f.logf("dropping malformed fragment train", map[string]interface{}{"id": id, "error": err})
		f.mu.Lock()
		delete(f.groups, id)
		f.mu.Unlock()
		return
	}
	if !complete {
		return
	}

	f.mu.Lock()
	delete(f.groups, id)
	metrics.OpenFragmentGroups.Set(float64(len(f.groups)))
	f.mu.Unlock()

	d, err := datagram.Decode(reassembled)
	if err != nil {
		f.logf("reassembled datagram failed to decode", map[string]interface{}{"error": err})
		return
	}

	f.logf("delivered", map[string]interface{}{"id": id, "payload": string(d.Payload)})
	metrics.Delivered.Inc()
	deliver(d.Payload)
}

func (f *Forwarder) forward(d datagram.Datagram, send func(to routing.NextHop, wire string)) {
	hop, ok, err := f.Table.NextHop(d.Destination())
	if err != nil {
		f.logf("route file error", map[string]interface{}{"error": err})
		return
	}
	if !ok {
		f.logf("no route", map[string]interface{}{"dst": d.Destination().String()})
		metrics.DroppedTotal.With(prometheus.Labels{"reason": metrics.ReasonNoRoute}).Inc()
		return
	}

	f.logf("forwarding", map[string]interface{}{
		"id":       d.ID,
		"dst":      d.Destination().String(),
		"next_hop": hop.Endpoint.String(),
	})

	decremented := datagram.WithDecrementedTTL(d)
	wire := datagram.Encode(decremented)

	fragments, err := fragment.Fragment(wire, hop.LinkMTU)
	if err != nil {
		f.logf("fragmentation error", map[string]interface{}{"error": err})
		return
	}

	for _, frag := range fragments {
		send(hop, frag)
		metrics.Forwarded.Inc()
	}
}

// EvictExpiredGroups removes incomplete fragment groups whose first
// fragment arrived more than GroupTTL ago. A no-op when GroupTTL is zero.
// Callers that want bounded memory growth should invoke this periodically;
// HandlePacket never calls it implicitly, so growth stays unbounded unless
// GroupTTL is set.
func (f *Forwarder) EvictExpiredGroups() {
	if f.GroupTTL == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for id, g := range f.groups {
		if now.Sub(g.firstSeen) > f.GroupTTL {
			delete(f.groups, id)
		}
	}
	metrics.OpenFragmentGroups.Set(float64(len(f.groups)))
}
