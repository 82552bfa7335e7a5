// Package fneclient is a simulated FNE peer for integration tests: it
// dials a control station's peer-network listener over UDP and drives
// the real internal/network/fne.PeerSession state machine through the
// RPTL -> RPTACK -> RPTK -> RPTACK -> RPTC -> RPTACK login chain, then
// exposes received frames for assertions, grounded on
// internal/testutils/mmdvm_client.go's simulated-repeater shape.
package fneclient

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/network/fne"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// ErrHandshakeTimeout is returned by WaitRunning when the login chain
// does not reach fne.PeerRunning within the given timeout.
var ErrHandshakeTimeout = errors.New("fneclient: handshake timed out")

// Frame is a decoded inbound frame delivered to a Client's Frames channel.
type Frame struct {
	Header  fne.Header
	Payload []byte
}

// Client is a simulated peer: it owns a *fne.PeerSession and a UDP
// socket, runs the login handshake and ping keepalive, and funnels
// every other inbound frame onto Frames for the test to assert against.
type Client struct {
	session *fne.PeerSession

	conn     *net.UDPConn
	running  chan struct{}
	done     chan struct{}
	closeErr sync.Once
	wg       sync.WaitGroup

	Frames chan Frame
}

// New builds a Client for the given peer ID/password/config, wrapping a
// fresh fne.PeerSession. retryTimer governs the ping/pong liveness window,
// matching the peer-side retry timer the real control station observes.
func New(peerID uint32, password string, cfg fne.PeerConfig, retryTimer time.Duration) *Client {
	return &Client{
		session: fne.NewPeerSession(peerID, password, cfg, retryTimer),
		running: make(chan struct{}),
		done:    make(chan struct{}),
		Frames:  make(chan Frame, 100),
	}
}

// Connect dials addr (host:port) over UDP and starts the login handshake
// and receive loop.
func (c *Client) Connect(addr string) error {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("fneclient: resolve addr: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("fneclient: dial udp: %w", err)
	}
	c.conn = conn

	c.wg.Add(1)
	go c.rx()

	if _, err := c.conn.Write(c.session.BuildRPTL()); err != nil {
		return fmt.Errorf("fneclient: sending RPTL: %w", err)
	}
	return nil
}

// WaitRunning blocks until the handshake completes (fne.PeerRunning) or
// the timeout expires.
func (c *Client) WaitRunning(timeout time.Duration) error {
	select {
	case <-c.running:
		return nil
	case <-time.After(timeout):
		return ErrHandshakeTimeout
	}
}

// Send writes a pre-built frame (e.g. a grant request built by the
// caller) directly to the socket.
func (c *Client) Send(frame []byte) error {
	_, err := c.conn.Write(frame)
	return err
}

// Drain collects all frames received within the given window, for
// negative assertions that nothing extra arrived.
func (c *Client) Drain(timeout time.Duration) []Frame {
	var out []Frame
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case f := <-c.Frames:
			out = append(out, f)
		case <-timer.C:
			return out
		}
	}
}

// Close shuts the client down, stopping its receive loop and closing the
// socket.
func (c *Client) Close() {
	c.closeErr.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
	c.wg.Wait()
}

func (c *Client) rx() {
	defer c.wg.Done()
	buf := make([]byte, 2048)
	for {
		select {
		case <-c.done:
			return
		default:
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, err := c.conn.Read(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		if n < fne.HeaderLen {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	h, payload, err := fne.DecodeHeader(data)
	if err != nil {
		return
	}

	switch h.Func {
	case p25const.FuncACK:
		reply, err := c.session.HandleACK(payload)
		if err != nil {
			return
		}
		if c.session.State == fne.PeerRunning {
			c.markRunning()
		}
		if reply != nil {
			_, _ = c.conn.Write(reply)
		}
	case p25const.FuncNAK:
		c.session.HandleNAK()
	case p25const.FuncPong:
		c.session.HandlePong()
	default:
		select {
		case c.Frames <- Frame{Header: h, Payload: payload}:
		default:
			// drop if the test isn't draining fast enough
		}
	}
}

func (c *Client) markRunning() {
	select {
	case <-c.running:
		// already closed
	default:
		close(c.running)
		c.wg.Add(1)
		go c.pingLoop()
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = c.conn.Write(c.session.BuildPing())
		case <-c.done:
			return
		}
	}
}
