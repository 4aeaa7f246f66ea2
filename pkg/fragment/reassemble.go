package fragment

import (
	"fmt"
	"sort"

	"github.com/arjunvale/udprouter/pkg/datagram"
)

// Reassemble attempts to merge an unordered collection of wire-encoded
// fragments, believed to share one datagram ID, into the original
// wire-encoded datagram. ok is false when the collection is merely
// incomplete (no error, no mutation): the first fragment's offset must be
// zero, every consecutive pair must abut with no gap or overlap, and the
// last fragment must have more_fragments false. err is reserved for a
// fragment that fails to decode at all.
func Reassemble(fragments []string) (wire string, ok bool, err error) {
	if len(fragments) == 0 {
		return "", false, nil
	}

	decoded := make([]datagram.Datagram, len(fragments))
	for i, f := range fragments {
		d, derr := datagram.Decode(f)
		if derr != nil {
			return "", false, fmt.Errorf("reassemble: decode fragment %d: %w", i, derr)
		}
		decoded[i] = d
	}

	sort.Slice(decoded, func(i, j int) bool {
		return decoded[i].Offset < decoded[j].Offset
	})

	if decoded[0].Offset != 0 {
		return "", false, nil
	}

	for i := 0; i+1 < len(decoded); i++ {
		a, b := decoded[i], decoded[i+1]
		if a.Offset+a.Size() != b.Offset {
			return "", false, nil
		}
	}

	if decoded[len(decoded)-1].MoreFragments {
		return "", false, nil
	}

	var payload []byte
	for _, d := range decoded {
		payload = append(payload, d.Payload...)
	}

	first := decoded[0]
	reassembled := datagram.Datagram{
		DstIP:         first.DstIP,
		DstPort:       first.DstPort,
		TTL:           first.TTL,
		ID:            first.ID,
		Offset:        0,
		MoreFragments: false,
		Payload:       payload,
	}

	return datagram.Encode(reassembled), true, nil
}
