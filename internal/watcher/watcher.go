// Package watcher implements the top-level control loop: a state machine
// that sequences discovery, signature scan, pointer walk, and path
// resolution, debounces repeated paths, and honors a cooperative stop
// flag.
package watcher

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"osuwatch/internal/beatmap"
	"osuwatch/internal/config"
	"osuwatch/internal/logging"
	"osuwatch/internal/osbridge"
	"osuwatch/internal/proclocator"
	"osuwatch/internal/ptrwalk"
	"osuwatch/internal/remoteread"
	"osuwatch/internal/sigscan"
	"osuwatch/internal/sink"
	"osuwatch/internal/wineresolve"
)

// state is the control loop's own notion of progress, independent of
// proclocator.Status: it additionally tracks whether a base anchor and a
// songs root have been recovered for the current process incarnation.
type state int

const (
	stateNoTarget state = iota
	stateTargetFound
	stateScanned
)

// Diagnostics is a read-only snapshot of the watcher's current state, for
// callers that want to introspect it without polling the Changes channel.
type Diagnostics struct {
	TickCount  uint64
	Status     proclocator.Status
	LastError  error
	HaveAnchor bool
	SongsRoot  string
}

// Watcher owns the ScanContext and every cached derivation. It is not
// safe for concurrent use except for the cooperative stop flag passed to
// Start.
type Watcher struct {
	opts config.Options

	locator  *proclocator.Locator
	scanner  *sigscan.Scanner
	walker   *ptrwalk.Walker
	resolver *wineresolve.Resolver

	ctx        proclocator.ScanContext
	state      state
	haveAnchor bool
	baseAnchor uint64

	havePathInfo bool
	songsRoot    string

	haveEmitted bool
	lastEmitted beatmap.Report

	tickCount uint64
	lastErr   error

	changes chan beatmap.Report
}

// New builds a Watcher wired to the real OS bridge (process_vm_readv,
// signal-0 liveness).
func New(opts config.Options) *Watcher {
	bridge := remoteread.BridgeFunc(osbridge.ReadRemote)
	reader := remoteread.New(bridge)

	return &Watcher{
		opts:     opts,
		locator:  proclocator.New(osbridge.IsAlive),
		scanner:  sigscan.New(reader, nil),
		walker:   ptrwalk.New(reader),
		resolver: wineresolve.New(),
		changes:  make(chan beatmap.Report, 1),
	}
}

// Changes returns a channel that receives every emitted report. It is
// additive plumbing alongside Start's blocking return value; a consumer
// that never reads it loses no correctness, since sends are non-blocking.
func (w *Watcher) Changes() <-chan beatmap.Report {
	return w.changes
}

// Diagnostics returns a snapshot of the watcher's current state.
func (w *Watcher) Diagnostics() Diagnostics {
	return Diagnostics{
		TickCount:  w.tickCount,
		Status:     w.ctx.Status,
		LastError:  w.lastErr,
		HaveAnchor: w.haveAnchor,
		SongsRoot:  w.songsRoot,
	}
}

// Start runs the control loop until stop is set (or, in run-once mode,
// until the first successful emit, at which point it sets stop itself).
// It returns the last observed full path, or "" if none was ever observed.
func (w *Watcher) Start(stop *atomic.Bool) (string, error) {
	for !stop.Load() {
		sleep, emitted := w.tick()

		if emitted != nil {
			w.emit(*emitted)
			if w.opts.RunOnce {
				stop.Store(true)
				break
			}
		}

		if stop.Load() {
			break
		}
		time.Sleep(sleep)
	}

	if w.haveEmitted {
		return w.lastEmitted.Full(), nil
	}
	return "", nil
}

// tick runs exactly one state-machine step and returns how long to sleep
// before the next one, and a report to emit if this tick produced a new
// (non-debounced) reading.
func (w *Watcher) tick() (time.Duration, *beatmap.Report) {
	w.tickCount++

	w.locator.Locate(&w.ctx)

	switch w.ctx.Status {
	case proclocator.StatusMissing:
		if w.state != stateNoTarget {
			logging.Warn("osu!.exe not found, waiting")
		}
		w.resetTarget()
		w.lastErr = ErrTargetMissing
		return config.NoTargetInterval, nil

	case proclocator.StatusDiscoveredThisTick:
		// A fresh incarnation: every cached derivation is stale.
		w.resetTarget()
		logging.Info("osu!.exe discovered", zap.Int("pid", w.ctx.PID))
	}

	if w.state == stateNoTarget {
		w.state = stateTargetFound
	}

	if w.state == stateTargetFound {
		return w.tickTargetFound()
	}

	return w.tickScanned()
}

func (w *Watcher) tickTargetFound() (time.Duration, *beatmap.Report) {
	if !w.havePathInfo {
		root, err := w.resolver.Resolve(w.ctx.PID, w.warn)
		if err != nil {
			logging.Warn("path resolve failed", zap.Int("pid", w.ctx.PID), zap.Error(err))
			w.lastErr = fmt.Errorf("%w: %v", ErrPathResolveFailure, err)
			w.songsRoot = ""
		} else {
			w.songsRoot = root
		}
		// A resolve failure is not retried; songsRoot stays whatever it
		// resolved to (possibly empty) for this incarnation.
		w.havePathInfo = true
	}

	addr, ok := w.scanner.Find(w.ctx.PID)
	if !ok {
		w.lastErr = ErrScanMiss
		return config.ScanMissBackoff, nil
	}

	w.baseAnchor = addr
	w.haveAnchor = true
	w.state = stateScanned
	return w.tickScanned()
}

func (w *Watcher) tickScanned() (time.Duration, *beatmap.Report) {
	relPath, err := w.walker.Walk(w.ctx.PID, w.baseAnchor)
	if err != nil {
		w.haveAnchor = false
		w.state = stateTargetFound
		if errors.Is(err, ptrwalk.ErrStringInvalid) {
			w.lastErr = ErrStringInvalid
		} else {
			w.lastErr = fmt.Errorf("%w: %v", ErrReadFailure, err)
		}
		return config.ActiveInterval, nil
	}

	report := beatmap.Report{SongsRoot: w.songsRoot, RelativePath: relPath}
	if w.haveEmitted && report == w.lastEmitted {
		return config.ActiveInterval, nil
	}

	w.lastEmitted = report
	w.haveEmitted = true
	return config.ActiveInterval, &report
}

func (w *Watcher) emit(report beatmap.Report) {
	logging.Info("beatmap changed", zap.String("path", report.Full()))

	select {
	case w.changes <- report:
	default:
	}

	if w.opts.WriteToFile {
		if err := sink.Write(w.opts.FilePath, report.Full()); err != nil {
			logging.Warn("sink write failed", zap.String("path", w.opts.FilePath), zap.Error(err))
		}
	}
}

func (w *Watcher) resetTarget() {
	w.state = stateNoTarget
	w.haveAnchor = false
	w.baseAnchor = 0
	w.havePathInfo = false
	w.songsRoot = ""
}

func (w *Watcher) warn(msg string) {
	logging.Warn(msg)
}
