package routing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arjunvale/udprouter/pkg/common"
)

func writeRouteFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func mustEndpoint(t *testing.T, ip string, port uint16) common.Endpoint {
	t.Helper()
	ep, err := common.ParseEndpoint(ip, port)
	if err != nil {
		t.Fatalf("ParseEndpoint() error = %v", err)
	}
	return ep
}

func TestNextHopNoRoute(t *testing.T) {
	path := writeRouteFile(t, "")
	table := NewTable(path)

	_, ok, err := table.NextHop(mustEndpoint(t, "10.0.0.1", 9000))
	if err != nil {
		t.Fatalf("NextHop() error = %v", err)
	}
	if ok {
		t.Error("NextHop() ok = true, want false for empty route file")
	}
}

func TestNextHopSingleRoute(t *testing.T) {
	path := writeRouteFile(t, "127.0.0.1/32 8001 8001 127.0.0.1 8001 1024\n")
	table := NewTable(path)

	hop, ok, err := table.NextHop(mustEndpoint(t, "127.0.0.1", 8001))
	if err != nil {
		t.Fatalf("NextHop() error = %v", err)
	}
	if !ok {
		t.Fatal("NextHop() ok = false, want true")
	}
	if hop.Endpoint.String() != "127.0.0.1:8001" || hop.LinkMTU != 1024 {
		t.Errorf("NextHop() = %+v, want 127.0.0.1:8001 mtu 1024", hop)
	}
}

func TestNextHopRoundRobinFairness(t *testing.T) {
	// Two equivalent next hops: rotation must go N1,N2,N1,...
	path := writeRouteFile(t, ""+
		"10.0.0.0/24 9000 9000 192.168.0.1 7000 1024\n"+
		"10.0.0.0/24 9000 9000 192.168.0.2 7000 1024\n")
	table := NewTable(path)

	dst := mustEndpoint(t, "10.0.0.1", 9000)
	var seq []string
	for i := 0; i < 5; i++ {
		hop, ok, err := table.NextHop(dst)
		if err != nil {
			t.Fatalf("NextHop() error = %v", err)
		}
		if !ok {
			t.Fatalf("NextHop() ok = false on query %d", i)
		}
		seq = append(seq, hop.Endpoint.IP.String())
	}

	want := []string{"192.168.0.1", "192.168.0.2", "192.168.0.1", "192.168.0.2", "192.168.0.1"}
	for i := range want {
		if seq[i] != want[i] {
			t.Errorf("query %d next hop = %s, want %s (full sequence %v)", i, seq[i], want[i], seq)
			break
		}
	}
}

func TestNextHopPortRangeExcludes(t *testing.T) {
	path := writeRouteFile(t, "10.0.0.0/24 9000 9010 192.168.0.1 7000 1024\n")
	table := NewTable(path)

	_, ok, err := table.NextHop(mustEndpoint(t, "10.0.0.1", 9999))
	if err != nil {
		t.Fatalf("NextHop() error = %v", err)
	}
	if ok {
		t.Error("NextHop() ok = true, want false (port outside range)")
	}
}

func TestNextHopCIDRIncludesNetworkAndBroadcast(t *testing.T) {
	path := writeRouteFile(t, "10.0.0.0/30 1 65535 192.168.0.1 7000 1024\n")
	table := NewTable(path)

	for _, ip := range []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, ok, err := table.NextHop(mustEndpoint(t, ip, 100))
		if err != nil {
			t.Fatalf("NextHop(%s) error = %v", ip, err)
		}
		if !ok {
			t.Errorf("NextHop(%s) ok = false, want true (network/broadcast included)", ip)
		}
	}
}

func TestNextHopFileOrderIsRingOrder(t *testing.T) {
	path := writeRouteFile(t, ""+
		"10.0.0.0/24 9000 9000 192.168.0.9 7000 1024\n"+
		"10.0.0.0/24 9000 9000 192.168.0.1 7000 1024\n")
	table := NewTable(path)

	hop, _, err := table.NextHop(mustEndpoint(t, "10.0.0.1", 9000))
	if err != nil {
		t.Fatalf("NextHop() error = %v", err)
	}
	if hop.Endpoint.IP.String() != "192.168.0.9" {
		t.Errorf("first returned hop = %s, want file-order first entry 192.168.0.9", hop.Endpoint.IP.String())
	}
}
