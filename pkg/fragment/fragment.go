// Package fragment implements datagram fragmentation and reassembly over
// the wire-encoded textual form: both operations are pure functions with
// no internal state, so ownership of any in-flight fragment group belongs
// entirely to the caller (see package forwarder).
package fragment

import (
	"fmt"

	"github.com/arjunvale/udprouter/pkg/datagram"
)

// Fragment splits a wire-encoded datagram into an ordered list of
// wire-encoded fragments, each of wire length at most mtu bytes. If the
// input already fits within mtu, Fragment returns it unchanged as the sole
// element.
func Fragment(wire string, mtu int) ([]string, error) {
	if len(wire) <= mtu {
		return []string{wire}, nil
	}

	p, err := datagram.Decode(wire)
	if err != nil {
		return nil, fmt.Errorf("fragment: decode input: %w", err)
	}

	payload := p.Payload
	var fragments []string
	cursor := 0

	for cursor < len(payload) {
		head := datagram.Datagram{
			DstIP:         p.DstIP,
			DstPort:       p.DstPort,
			TTL:           p.TTL,
			ID:            p.ID,
			Offset:        p.Offset + cursor,
			MoreFragments: true,
			Payload:       nil,
		}
		headerLen := len(datagram.Encode(head))

		maxPayload := mtu - headerLen
		if maxPayload <= 0 {
			return nil, fmt.Errorf("fragment: mtu %d too small for header of %d bytes", mtu, headerLen)
		}

		end := cursor + maxPayload
		if end > len(payload) {
			end = len(payload)
		}

		frag := datagram.Datagram{
			DstIP:         p.DstIP,
			DstPort:       p.DstPort,
			TTL:           p.TTL,
			ID:            p.ID,
			Offset:        p.Offset + cursor,
			MoreFragments: true,
			Payload:       payload[cursor:end],
		}
		fragments = append(fragments, datagram.Encode(frag))

		cursor = end
	}

	// Last-fragment flag rule: only an input that was itself terminal
	// produces a terminal train. A fragment of a non-terminal fragment
	// leaves every piece flagged more_fragments=1.
	if !p.MoreFragments && len(fragments) > 0 {
		last, err := datagram.Decode(fragments[len(fragments)-1])
		if err != nil {
			return nil, fmt.Errorf("fragment: re-decode last fragment: %w", err)
		}
		last.MoreFragments = false
		fragments[len(fragments)-1] = datagram.Encode(last)
	}

	return fragments, nil
}
