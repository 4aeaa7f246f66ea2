// Package common provides shared address types used across the router core.
package common

import (
	"fmt"
	"net"
)

// IPv4Address represents a 32-bit IPv4 address.
type IPv4Address [4]byte

// String returns the IP address in dotted decimal format (e.g., "192.168.1.1").
func (ip IPv4Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// ParseIPv4 parses a string IPv4 address (e.g., "192.168.1.1").
func ParseIPv4(s string) (IPv4Address, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return IPv4Address{}, fmt.Errorf("invalid IP address: %s", s)
	}
	ip = ip.To4()
	if ip == nil {
		return IPv4Address{}, fmt.Errorf("not an IPv4 address: %s", s)
	}
	var addr IPv4Address
	copy(addr[:], ip)
	return addr, nil
}

// Endpoint identifies a router node's listen address: an IPv4 address and a
// UDP port. This is the unit of destination/next-hop identity used
// throughout routing and forwarding.
type Endpoint struct {
	IP   IPv4Address
	Port uint16
}

// String returns "ip:port", e.g. "127.0.0.1:8000".
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

// ParseEndpoint parses a dotted-quad IP and a port into an Endpoint.
func ParseEndpoint(ip string, port uint16) (Endpoint, error) {
	addr, err := ParseIPv4(ip)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{IP: addr, Port: port}, nil
}
