package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/config"
	"github.com/keystone-rf/p25ctrl/internal/logging"
	"github.com/keystone-rf/p25ctrl/internal/modem"
	"github.com/keystone-rf/p25ctrl/internal/p25/control"
	"github.com/keystone-rf/p25ctrl/internal/p25const"
	"golang.org/x/sync/errgroup"
)

// ErrModemTransportNotImplemented marks a configured modem transport kind
// spec.md §1 names as an out-of-scope collaborator: the control core
// speaks the internal/modem framing to it, but does not itself ship a
// serial or UDP-to-DSP driver.
var ErrModemTransportNotImplemented = errors.New("modem: transport not implemented, out of scope per spec.md non-goals")

// buildModemTransport resolves the configured modem.Transport. A "none"
// transport is a valid deployment (network-linking-only site, or a test
// harness driving the engine directly) and returns a nil Transport.
func buildModemTransport(cfg config.Modem) (modem.Transport, error) {
	switch cfg.Transport {
	case config.ModemTransportNone:
		return nil, nil
	case config.ModemTransportSerial, config.ModemTransportUDP:
		return nil, fmt.Errorf("%w: %s", ErrModemTransportNotImplemented, cfg.Transport)
	default:
		return nil, fmt.Errorf("modem: unknown transport %q", cfg.Transport)
	}
}

// modemWriteInterval governs how often the engine's TX queue is drained
// to the modem; it is deliberately much faster than the control-channel
// tick so voice/TSDU frames don't pile up waiting on the write side.
const modemWriteInterval = 5 * time.Millisecond

// runModemTask owns the modem transport's lifetime and pumps frames in
// both directions between it and the engine, per spec.md §5's "modem
// task" in the fixed task set.
func runModemTask(ctx context.Context, t modem.Transport, engine *control.Engine) error {
	if err := t.Open(ctx); err != nil {
		return fmt.Errorf("opening modem transport: %w", err)
	}
	defer func() {
		if err := t.Close(); err != nil {
			logging.Errorf("closing modem transport: %s", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return modemReadLoop(gctx, t, engine) })
	g.Go(func() error { return modemWriteLoop(gctx, t, engine) })
	return g.Wait()
}

func modemReadLoop(ctx context.Context, t modem.Transport, engine *control.Engine) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		buf, err := t.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading from modem: %w", err)
		}
		f, _, err := modem.DecodeFrame(buf)
		if err != nil {
			logging.Warnf("modem: undecodable frame: %s", err)
			continue
		}
		if f.Opcode != p25const.ModemP25Data {
			continue
		}
		if err := engine.ProcessRF(f.Payload); err != nil {
			logging.Warnf("process_rf: %s", err)
		}
	}
}

func modemWriteLoop(ctx context.Context, t modem.Transport, engine *control.Engine) error {
	ticker := time.NewTicker(modemWriteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				payload, ok := engine.GetFrame()
				if !ok {
					break
				}
				f := modem.Frame{Opcode: p25const.ModemP25Data, Payload: payload}
				if err := t.Write(ctx, f.Encode()); err != nil {
					return fmt.Errorf("writing to modem: %w", err)
				}
			}
		}
	}
}
