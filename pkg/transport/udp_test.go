package transport

import (
	"net"
	"testing"

	"github.com/arjunvale/udprouter/pkg/common"
)

func TestUDPSocketSendReceiveLoopback(t *testing.T) {
	server, err := Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer server.Close()

	client, err := Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer client.Close()

	udpAddr := server.conn.LocalAddr().(*net.UDPAddr)
	dst, err := common.ParseEndpoint("127.0.0.1", uint16(udpAddr.Port))
	if err != nil {
		t.Fatalf("ParseEndpoint() error = %v", err)
	}

	if err := client.Send(dst, []byte("hello")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	buf := make([]byte, 1024)
	n, from, err := server.Receive(buf)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("Receive() data = %q, want %q", buf[:n], "hello")
	}
	if from.IP.String() != "127.0.0.1" {
		t.Errorf("Receive() from.IP = %s, want 127.0.0.1", from.IP)
	}
}
