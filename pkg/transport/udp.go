// Package transport wraps a real UDP socket behind small Receiver/Sender
// interfaces, the way the teacher's pkg/udp separates socket mechanics from
// the stack above it. The forwarder does not use these interfaces: it takes
// deliver/send callbacks, which cmd/router backs with a UDPSocket.
package transport

import (
	"fmt"
	"net"

	"github.com/arjunvale/udprouter/pkg/common"
)

// Receiver reads datagrams off a bound socket.
type Receiver interface {
	// Receive blocks until a datagram arrives, then returns its payload
	// bytes (capped at buf's length) and the sender's address.
	Receive(buf []byte) (n int, from common.Endpoint, err error)
}

// Sender writes a datagram to a destination.
type Sender interface {
	Send(to common.Endpoint, data []byte) error
}

// UDPSocket is a Receiver and Sender backed by a bound *net.UDPConn.
type UDPSocket struct {
	conn *net.UDPConn
}

// Listen binds a UDP socket to ip:port and returns it ready to receive.
func Listen(ip string, port uint16) (*UDPSocket, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(ip), Port: int(port)}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen on %s:%d: %w", ip, port, err)
	}
	return &UDPSocket{conn: conn}, nil
}

// Receive blocks on the socket for the next datagram.
func (s *UDPSocket) Receive(buf []byte) (int, common.Endpoint, error) {
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, common.Endpoint{}, fmt.Errorf("transport: receive: %w", err)
	}

	ip, err := common.ParseIPv4(addr.IP.String())
	if err != nil {
		return 0, common.Endpoint{}, fmt.Errorf("transport: receive: unexpected source address %s: %w", addr.IP, err)
	}

	return n, common.Endpoint{IP: ip, Port: uint16(addr.Port)}, nil
}

// Send writes data to the given destination.
func (s *UDPSocket) Send(to common.Endpoint, data []byte) error {
	addr := &net.UDPAddr{IP: net.ParseIP(to.IP.String()), Port: int(to.Port)}
	if _, err := s.conn.WriteToUDP(data, addr); err != nil {
		return fmt.Errorf("transport: send to %s: %w", to, err)
	}
	return nil
}

// Close releases the underlying socket.
func (s *UDPSocket) Close() error {
	return s.conn.Close()
}
