// Package datagram implements the wire codec for the router's textual IP
// datagrams: a single comma-separated line with a fixed 8-digit size field
// and a payload that may itself contain commas.
package datagram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arjunvale/udprouter/pkg/common"
)

// fieldCount is the number of comma-separated fields in a wire datagram:
// dst_ip, dst_port, ttl, id, offset, size, flag, payload.
const fieldCount = 8

// sizeDigits is the fixed width of the size field, e.g. "00000255".
const sizeDigits = 8

// Datagram is the in-memory form of one wire datagram (spec §3).
type Datagram struct {
	DstIP         common.IPv4Address
	DstPort       uint16
	TTL           int32
	ID            string
	Offset        int
	MoreFragments bool
	Payload       []byte
}

// Size is the byte length of Payload as it will be rendered in the wire
// form's fixed 8-digit size field.
func (d Datagram) Size() int {
	return len(d.Payload)
}

// Destination returns the datagram's final destination as an Endpoint.
func (d Datagram) Destination() common.Endpoint {
	return common.Endpoint{IP: d.DstIP, Port: d.DstPort}
}

// MalformedHeaderError reports why a wire line failed to decode (spec §4.1,
// §7 MalformedHeader). It wraps the underlying cause, if any, via Unwrap.
type MalformedHeaderError struct {
	Reason string
	Cause  error
}

func (e *MalformedHeaderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed header: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed header: %s", e.Reason)
}

func (e *MalformedHeaderError) Unwrap() error { return e.Cause }

func malformed(reason string, cause error) error {
	return &MalformedHeaderError{Reason: reason, Cause: cause}
}

// Encode renders a Datagram to its wire form: eight comma-separated fields,
// size padded to exactly 8 digits, flag literally "1" or "0".
func Encode(d Datagram) string {
	flag := "0"
	if d.MoreFragments {
		flag = "1"
	}
	return strings.Join([]string{
		d.DstIP.String(),
		strconv.Itoa(int(d.DstPort)),
		strconv.Itoa(int(d.TTL)),
		d.ID,
		strconv.Itoa(d.Offset),
		fmt.Sprintf("%0*d", sizeDigits, d.Size()),
		flag,
	}, ",") + "," + string(d.Payload)
}

// Decode parses a wire line back into a Datagram. The payload is taken
// verbatim as the eighth field: Decode splits on the first seven commas
// only, so commas embedded in the payload survive untouched (spec §4.1
// split policy).
//
// Decode fails with a *MalformedHeaderError if fewer than 7 commas are
// present, a numeric field doesn't parse, size isn't exactly 8 digits, or
// flag isn't "0" or "1".
func Decode(wire string) (Datagram, error) {
	parts := strings.SplitN(wire, ",", fieldCount)
	if len(parts) != fieldCount {
		return Datagram{}, malformed(fmt.Sprintf("expected %d comma-separated fields, got %d", fieldCount, len(parts)), nil)
	}

	dstIP, err := common.ParseIPv4(parts[0])
	if err != nil {
		return Datagram{}, malformed("dst_ip", err)
	}

	dstPort, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Datagram{}, malformed("dst_port", err)
	}

	ttl, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return Datagram{}, malformed("ttl", err)
	}

	id := parts[3]
	if id == "" {
		return Datagram{}, malformed("id must not be empty", nil)
	}
	if strings.Contains(id, ",") {
		return Datagram{}, malformed("id must not contain a comma", nil)
	}

	offset, err := strconv.Atoi(parts[4])
	if err != nil {
		return Datagram{}, malformed("offset", err)
	}
	if offset < 0 {
		return Datagram{}, malformed("offset must be non-negative", nil)
	}

	sizeField := parts[5]
	if len(sizeField) != sizeDigits {
		return Datagram{}, malformed(fmt.Sprintf("size must be exactly %d digits, got %q", sizeDigits, sizeField), nil)
	}
	size, err := strconv.Atoi(sizeField)
	if err != nil {
		return Datagram{}, malformed("size", err)
	}

	var moreFragments bool
	switch parts[6] {
	case "1":
		moreFragments = true
	case "0":
		moreFragments = false
	default:
		return Datagram{}, malformed(fmt.Sprintf("flag must be \"0\" or \"1\", got %q", parts[6]), nil)
	}

	payload := []byte(parts[7])
	if len(payload) != size {
		return Datagram{}, malformed(fmt.Sprintf("size field says %d bytes, payload is %d bytes", size, len(payload)), nil)
	}

	return Datagram{
		DstIP:         dstIP,
		DstPort:       uint16(dstPort),
		TTL:           int32(ttl),
		ID:            id,
		Offset:        offset,
		MoreFragments: moreFragments,
		Payload:       payload,
	}, nil
}

// WithDecrementedTTL returns a copy of d with TTL reduced by one, leaving d
// untouched (spec's re-architecture note: value-returning transformation
// instead of in-place mutation).
func WithDecrementedTTL(d Datagram) Datagram {
	d.TTL--
	return d
}
