package routing

import (
	"sync"

	"github.com/arjunvale/udprouter/pkg/common"
)

// ring is a circular array with a cursor: next returns elements in
// ascending order, wrapping back to the start once the end is reached.
type ring struct {
	entries []NextHop
	cursor  int
}

func (r *ring) next() (NextHop, bool) {
	if len(r.entries) == 0 {
		return NextHop{}, false
	}
	entry := r.entries[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.entries)
	return entry, true
}

// Table is a round-robin routing table: it re-reads the route file on every
// cache miss for a distinct destination, then memoizes the resulting ring of
// equivalent next hops for that destination for the lifetime of the
// process. Route files are assumed immutable while the process runs.
type Table struct {
	mu        sync.Mutex
	routeFile string
	cache     map[common.Endpoint]*ring
}

// NewTable creates a routing table backed by routeFile. The file is not
// read until the first query.
func NewTable(routeFile string) *Table {
	return &Table{
		routeFile: routeFile,
		cache:     make(map[common.Endpoint]*ring),
	}
}

// NextHop returns the next next-hop for dst, rotating the cached ring for
// dst on every call. ok is false when no route line matches dst: a
// permanently empty ring, not an error.
//
// On the first query for a given dst, the route file is read and every
// matching line's next hop is collected, preserving file order, into the
// ring installed in the cache. err is non-nil only when the route file
// itself cannot be read or parsed (RouteFileIO, a fatal condition per the
// error taxonomy); a dst with no matching lines is (NextHop{}, false, nil).
func (t *Table) NextHop(dst common.Endpoint) (NextHop, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.cache[dst]
	if !ok {
		lines, err := readLines(t.routeFile)
		if err != nil {
			return NextHop{}, false, err
		}

		var entries []NextHop
		dstIP := dst.IP.String()
		for _, line := range lines {
			if !line.matches(dstIP, dst.Port) {
				continue
			}
			nextHopIP, err := common.ParseIPv4(line.NextHopIP)
			if err != nil {
				return NextHop{}, false, err
			}
			entries = append(entries, NextHop{
				Endpoint: common.Endpoint{IP: nextHopIP, Port: line.NextHopPort},
				LinkMTU:  line.LinkMTU,
			})
		}

		r = &ring{entries: entries}
		t.cache[dst] = r
	}

	hop, found := r.next()
	return hop, found, nil
}
