package fne_test

import (
	"net"
	"testing"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/network/fne"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
	"github.com/keystone-rf/p25ctrl/internal/testutils/fneclient"
)

// runMockMaster is a minimal master-role UDP loop driving fne.MasterSession
// through RPTL->RPTK->RPTC, then echoing pings as pongs, mirroring how
// DMRHub's integration.go spins up a real server for a simulated client to
// dial against.
func runMockMaster(t *testing.T, conn *net.UDPConn, password string, stop <-chan struct{}) {
	t.Helper()
	var master *fne.MasterSession
	var peerAddr *net.UDPAddr
	configured := false

	buf := make([]byte, 2048)
	for {
		select {
		case <-stop:
			return
		default:
		}
		_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		h, payload, err := fne.DecodeHeader(data)
		if err != nil {
			continue
		}
		peerAddr = raddr

		switch h.Func {
		case p25const.FuncRepeaterLogin:
			master = fne.NewMasterSession(h.PeerID, password)
			ack, err := master.IssueChallenge()
			if err != nil {
				t.Errorf("issue challenge: %v", err)
				continue
			}
			_, _ = conn.WriteToUDP(ack, peerAddr)
		case p25const.FuncRepeaterAuth:
			if master == nil || !master.VerifyRPTK(payload) {
				nak := fne.Header{Func: p25const.FuncNAK, PeerID: h.PeerID}.Encode(nil)
				_, _ = conn.WriteToUDP(nak, peerAddr)
				continue
			}
			ack := fne.Header{Func: p25const.FuncACK, PeerID: h.PeerID}.Encode(nil)
			_, _ = conn.WriteToUDP(ack, peerAddr)
		case p25const.FuncRepeaterConfig:
			configured = true
			ack := fne.Header{Func: p25const.FuncACK, PeerID: h.PeerID}.Encode(nil)
			_, _ = conn.WriteToUDP(ack, peerAddr)
		case p25const.FuncPing:
			if !configured {
				continue
			}
			pong := fne.Header{Func: p25const.FuncPong, PeerID: h.PeerID}.Encode(nil)
			_, _ = conn.WriteToUDP(pong, peerAddr)
		}
	}
}

func TestFNEClientAgainstMockMaster(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = listener.Close() }()

	stop := make(chan struct{})
	defer close(stop)
	go runMockMaster(t, listener, "s3cr3t", stop)

	client := fneclient.New(4001, "s3cr3t", fne.PeerConfig{Callsign: "KEYSTONE1", SiteID: 1, ChannelID: 1}, time.Second)
	defer client.Close()

	if err := client.Connect(listener.LocalAddr().String()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.WaitRunning(2 * time.Second); err != nil {
		t.Fatalf("handshake did not reach running: %v", err)
	}
}

func TestFNEClientWrongPasswordNeverReachesRunning(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = listener.Close() }()

	stop := make(chan struct{})
	defer close(stop)
	go runMockMaster(t, listener, "correct-password", stop)

	client := fneclient.New(4002, "wrong-password", fne.PeerConfig{Callsign: "KEYSTONE2"}, time.Second)
	defer client.Close()

	if err := client.Connect(listener.LocalAddr().String()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.WaitRunning(300 * time.Millisecond); err != fneclient.ErrHandshakeTimeout {
		t.Fatalf("expected handshake timeout on wrong password, got %v", err)
	}
}
