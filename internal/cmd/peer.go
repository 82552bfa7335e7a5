package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/config"
	"github.com/keystone-rf/p25ctrl/internal/logging"
	"github.com/keystone-rf/p25ctrl/internal/network/fne"
	"github.com/keystone-rf/p25ctrl/internal/p25/control"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
	"golang.org/x/sync/errgroup"
)

// runPeerTask dials this site's configured master FNE and drives the
// login handshake, keepalive, and inbound ring dispatch for the peer
// network protocol of spec.md §4.7/§6, feeding decoded P25 payloads into
// the engine's network-originated pipeline. Mirrors
// internal/testutils/fneclient's simulated-peer shape on the real
// production side of the same state machine.
func runPeerTask(ctx context.Context, cfg config.Peer, site config.Site, engine *control.Engine) error {
	addr := fmt.Sprintf("%s:%d", cfg.MasterHost, cfg.MasterPort)
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("peer: resolving master address %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("peer: dialing master %q: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	peerCfg := fne.PeerConfig{
		Callsign:  site.Callsign,
		SiteID:    site.SiteID,
		ChannelID: site.ChannelID,
		Identity:  fmt.Sprintf("p25ctrl-site-%d", site.SiteID),
	}
	session := fne.NewPeerSession(cfg.PeerID, cfg.Password, peerCfg, cfg.PingInterval)
	rings := fne.NewRings(raddr)

	if _, err := conn.Write(session.BuildRPTL()); err != nil {
		return fmt.Errorf("peer: sending login: %w", err)
	}

	pool := fne.NewWorkerPool(rings.P25, 0, func(b []byte) error {
		engine.EnqueueNetFrame(b)
		return nil
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pool.Run(gctx) })
	g.Go(func() error { return peerReadLoop(gctx, conn, session, rings) })
	g.Go(func() error { return peerPingLoop(gctx, conn, session, cfg.PingInterval) })
	return g.Wait()
}

func peerReadLoop(ctx context.Context, conn *net.UDPConn, session *fne.PeerSession, rings *fne.Rings) error {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])

		h, payload, err := fne.DecodeHeader(data)
		if err != nil {
			continue
		}

		switch h.Func {
		case p25const.FuncACK:
			reply, err := session.HandleACK(payload)
			if err != nil {
				logging.Warnf("peer: %s", err)
				continue
			}
			if reply != nil {
				if _, err := conn.Write(reply); err != nil {
					return fmt.Errorf("peer: writing handshake reply: %w", err)
				}
			}
			if session.State == fne.PeerRunning {
				logging.Infof("peer: link to master established")
			}
		case p25const.FuncNAK:
			logging.Warnf("peer: master rejected login, retrying")
			session.HandleNAK()
			if _, err := conn.Write(session.BuildRPTL()); err != nil {
				return fmt.Errorf("peer: resending login: %w", err)
			}
		case p25const.FuncPong:
			session.HandlePong()
		case p25const.FuncProtocol:
			if err := rings.Dispatch(raddr, p25const.ProtoSubFunc(h.Sub), payload); err != nil {
				logging.Warnf("peer: dispatch: %s", err)
			}
		}
	}
}

func peerPingLoop(ctx context.Context, conn *net.UDPConn, session *fne.PeerSession, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if session.State != fne.PeerRunning {
				continue
			}
			if session.PongExpired(now) {
				return fmt.Errorf("peer: link to master timed out")
			}
			if _, err := conn.Write(session.BuildPing()); err != nil {
				return fmt.Errorf("peer: sending ping: %w", err)
			}
		}
	}
}
