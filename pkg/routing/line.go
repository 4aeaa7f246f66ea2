// Package routing implements the round-robin routing table: CIDR+port-range
// matching against a route file, memoized per destination as a cursored
// ring of equivalent next hops.
package routing

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/arjunvale/udprouter/pkg/common"
)

// Line is one parsed entry of a route file: "CIDR initial_port final_port
// next_hop_ip next_hop_port link_mtu".
type Line struct {
	Hosts        map[string]struct{} // every host address the CIDR enumerates
	InitialPort  int
	FinalPort    int
	NextHopIP    string
	NextHopPort  uint16
	LinkMTU      int
}

// NextHop is a single routable next hop: a destination endpoint to forward
// to and the MTU of the link reaching it.
type NextHop struct {
	Endpoint common.Endpoint
	LinkMTU  int
}

// matches reports whether destination ip/port falls within this line's CIDR
// and port range.
func (l Line) matches(ip string, port uint16) bool {
	if _, ok := l.Hosts[ip]; !ok {
		return false
	}
	return int(port) >= l.InitialPort && int(port) <= l.FinalPort
}

// parseLine parses one whitespace-separated route file line. The CIDR is
// expanded to every host address it enumerates, including network and
// broadcast addresses; the simulator does not special-case them.
func parseLine(raw string) (Line, error) {
	fields := strings.Fields(raw)
	if len(fields) != 6 {
		return Line{}, fmt.Errorf("routing: expected 6 fields, got %d: %q", len(fields), raw)
	}

	cidr := fields[0]
	initialPort, err := strconv.Atoi(fields[1])
	if err != nil {
		return Line{}, fmt.Errorf("routing: initial_port: %w", err)
	}
	finalPort, err := strconv.Atoi(fields[2])
	if err != nil {
		return Line{}, fmt.Errorf("routing: final_port: %w", err)
	}
	nextHopIP := fields[3]
	if _, err := common.ParseIPv4(nextHopIP); err != nil {
		return Line{}, fmt.Errorf("routing: next_hop_ip: %w", err)
	}
	nextHopPort, err := strconv.ParseUint(fields[4], 10, 16)
	if err != nil {
		return Line{}, fmt.Errorf("routing: next_hop_port: %w", err)
	}
	linkMTU, err := strconv.Atoi(fields[5])
	if err != nil {
		return Line{}, fmt.Errorf("routing: link_mtu: %w", err)
	}

	hosts, err := expandCIDR(cidr)
	if err != nil {
		return Line{}, fmt.Errorf("routing: cidr %q: %w", cidr, err)
	}

	return Line{
		Hosts:       hosts,
		InitialPort: initialPort,
		FinalPort:   finalPort,
		NextHopIP:   nextHopIP,
		NextHopPort: uint16(nextHopPort),
		LinkMTU:     linkMTU,
	}, nil
}

// expandCIDR enumerates every host address in a CIDR network, including the
// network and broadcast addresses. This is preserved as-specified: a route
// table is expected to be host-exhaustive, not a longest-prefix match.
func expandCIDR(cidr string) (map[string]struct{}, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	if ip.To4() == nil {
		return nil, fmt.Errorf("not an IPv4 network")
	}

	hosts := make(map[string]struct{})
	for addr := cloneIP(ipNet.IP); ipNet.Contains(addr); incIP(addr) {
		hosts[addr.String()] = struct{}{}
	}
	return hosts, nil
}

func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			return
		}
	}
}

// readLines opens a route file and parses every line in file order.
func readLines(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("routing: open route file: %w", err)
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw := scanner.Text()
		if raw == "" {
			continue
		}
		line, err := parseLine(raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("routing: read route file: %w", err)
	}
	return lines, nil
}
