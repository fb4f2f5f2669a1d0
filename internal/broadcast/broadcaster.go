// Package broadcast fans replayed byte ranges out to the connected
// terminal clients over plain TCP.
//
// There is no framing, authentication, or TLS: clients are terminal
// emulators (or nc) on the local machine, and the relay is byte-exact so
// they can render the identical stream side by side.
package broadcast

import (
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
)

// DefaultListenAddr is the well-known loopback endpoint clients connect
// to, e.g. with `nc 127.0.0.1 8383`.
const DefaultListenAddr = "127.0.0.1:8383"

// client is one attached terminal. The uuid tags log lines; operators
// address clients by their 1-based position in the acceptance order.
type client struct {
	id     string
	conn   net.Conn
	remote string
}

// Broadcaster owns the live client set. It is exclusively driven by the
// single shell thread: accepting blocks that thread on purpose, since the
// operator is busy connecting terminals out-of-band.
type Broadcaster struct {
	addr    string
	out     io.Writer
	clients []*client

	// onListen, when set, is told the bound address once the listener is
	// up. Tests use it to dial ephemeral ports.
	onListen func(net.Addr)
}

// New creates a Broadcaster that will listen on addr and write operator
// messages to out.
func New(addr string, out io.Writer) *Broadcaster {
	return &Broadcaster{addr: addr, out: out}
}

// Count returns the number of attached clients.
func (b *Broadcaster) Count() int {
	return len(b.clients)
}

// AcceptUntil binds the listener and blocks until enough clients have
// connected. With grow=false the current client set is dropped first and
// count is the total to collect; with grow=true existing clients are kept
// and count more are accepted. Clients are appended in acceptance order,
// which is how operators identify them from then on.
//
// The listener is closed before returning, success or not; a bind failure
// leaves no listening socket and an untouched client set.
func (b *Broadcaster) AcceptUntil(count int, grow bool) error {
	if count < 1 {
		return fmt.Errorf("client count must be >= 1, got %d", count)
	}

	ln, err := net.Listen("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", b.addr, err)
	}
	defer ln.Close()

	fmt.Fprintf(b.out, "Listening on %s\n", ln.Addr())
	if b.onListen != nil {
		b.onListen(ln.Addr())
	}

	if !grow {
		b.CloseAll()
	}
	target := count
	if grow {
		target = len(b.clients) + count
	}

	for len(b.clients) < target {
		fmt.Fprintf(b.out, "Waiting for client %d/%d...\n", len(b.clients)+1, target)
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		c := &client{
			id:     uuid.NewString(),
			conn:   conn,
			remote: conn.RemoteAddr().String(),
		}
		b.clients = append(b.clients, c)
		fmt.Fprintf(b.out, "Remote connected by %s\n", c.remote)
	}

	return nil
}

// Send relays data to every attached client with one blocking write each.
// A failed write drops only that client, reported by ordinal; the rest
// still get their copy. Iteration runs in reverse index order so removal
// is safe mid-loop.
func (b *Broadcaster) Send(data []byte) {
	for i := len(b.clients) - 1; i >= 0; i-- {
		c := b.clients[i]
		if _, err := c.conn.Write(data); err != nil {
			fmt.Fprintf(b.out, "Client #%d (%s) disconnected: %v\n", i+1, c.remote, err)
			c.conn.Close()
			b.clients = append(b.clients[:i], b.clients[i+1:]...)
		}
	}
}

// CloseAll disconnects and forgets every client.
func (b *Broadcaster) CloseAll() {
	for _, c := range b.clients {
		c.conn.Close()
	}
	b.clients = nil
}
