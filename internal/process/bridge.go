package process

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/smazurov/camoufox-launcher/internal/logging"
)

// forwardedSignals are the host signals relayed to the child's group.
var forwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SignalSource subscribes a channel to host signals.
// The default implementation is os/signal.
type SignalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
	Ignored(sig os.Signal) bool
	Ignore(sig ...os.Signal)
}

type osSignals struct{}

func (osSignals) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
func (osSignals) Stop(c chan<- os.Signal)                     { signal.Stop(c) }
func (osSignals) Ignored(sig os.Signal) bool                  { return signal.Ignored(sig) }
func (osSignals) Ignore(sig ...os.Signal)                     { signal.Ignore(sig...) }

// SignalCallback is called after a host signal was forwarded to the child.
type SignalCallback func(sig syscall.Signal)

// BridgeOptions configures a SignalBridge.
type BridgeOptions struct {
	// Signaler delivers forwarded signals. If nil, uses GroupSignaler.
	Signaler Signaler

	// Source provides host signal delivery. If nil, uses os/signal.
	Source SignalSource

	// OnSignal is called for every forwarded signal (optional).
	OnSignal SignalCallback

	// Logger for bridge operations. If nil, uses slog.Default().
	Logger logging.Logger
}

// SignalBridge relays SIGINT and SIGTERM received by this process to the
// child's process group for as long as it is installed.
type SignalBridge struct {
	pgid     int
	state    *State
	signaler Signaler
	source   SignalSource
	onSignal SignalCallback
	logger   logging.Logger

	sigChan    chan os.Signal
	wake       chan struct{}
	stop       chan struct{}
	wg         sync.WaitGroup
	wasIgnored []os.Signal
	installed  bool

	installOnce sync.Once
	restoreOnce sync.Once
}

// NewSignalBridge creates a bridge forwarding to pgid and recording into state.
func NewSignalBridge(pgid int, state *State, opts *BridgeOptions) *SignalBridge {
	if opts == nil {
		opts = &BridgeOptions{}
	}
	b := &SignalBridge{
		pgid:     pgid,
		state:    state,
		signaler: opts.Signaler,
		source:   opts.Source,
		onSignal: opts.OnSignal,
		logger:   opts.Logger,
		sigChan:  make(chan os.Signal, len(forwardedSignals)),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	if b.signaler == nil {
		b.signaler = GroupSignaler{}
	}
	if b.source == nil {
		b.source = osSignals{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Install starts relaying host signals. Calling it more than once is a no-op.
func (b *SignalBridge) Install() {
	b.installOnce.Do(func() {
		for _, sig := range forwardedSignals {
			if b.source.Ignored(sig) {
				b.wasIgnored = append(b.wasIgnored, sig)
			}
		}
		b.source.Notify(b.sigChan, forwardedSignals...)

		b.installed = true

		b.wg.Add(1)
		go b.relay()
	})
}

// Restore stops relaying and puts the previous signal disposition back.
// It runs at most once and does nothing if Install was never called.
func (b *SignalBridge) Restore() {
	b.restoreOnce.Do(func() {
		if !b.installed {
			return
		}
		b.source.Stop(b.sigChan)
		close(b.stop)
		b.wg.Wait()
		if len(b.wasIgnored) > 0 {
			b.source.Ignore(b.wasIgnored...)
		}
		b.logger.Debug("Signal handlers restored", "pgid", b.pgid)
	})
}

// Wake returns a channel that receives after a signal has been forwarded
// and recorded.
func (b *SignalBridge) Wake() <-chan struct{} {
	return b.wake
}

func (b *SignalBridge) relay() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		case sig := <-b.sigChan:
			if s, ok := sig.(syscall.Signal); ok {
				b.handle(s)
			}
		}
	}
}

// handle forwards before recording so that the supervisor never observes a
// signal the child has not been sent yet.
func (b *SignalBridge) handle(sig syscall.Signal) {
	b.logger.Info("Forwarding signal to process group", "signal", sig.String(), "pgid", b.pgid)
	if err := b.signaler.Signal(b.pgid, sig); err != nil {
		if errors.Is(err, ErrGroupGone) {
			b.logger.Debug("Process group already gone", "signal", sig.String(), "pgid", b.pgid)
		} else {
			b.logger.Warn("Failed to forward signal", "signal", sig.String(), "error", err)
		}
	}
	if !b.state.RecordSignal(sig) {
		b.logger.Debug("Signal already recorded, keeping first", "signal", sig.String(), "recorded", b.state.Signal().String())
	}
	if b.onSignal != nil {
		b.onSignal(sig)
	}
	select {
	case b.wake <- struct{}{}:
	default:
	}
}
