package watcher

import "errors"

// Sentinel error kinds the control loop recovers from locally. tick
// stores the most recent one in lastErr; Diagnostics exposes it directly
// so callers can errors.Is against these values rather than compare
// strings. The loop itself never returns these to Start's caller — it
// only ever returns the observed path or a terminal nil.
var (
	ErrTargetMissing      = errors.New("watcher: target process not found")
	ErrScanMiss           = errors.New("watcher: signature not found")
	ErrReadFailure        = errors.New("watcher: remote read failed")
	ErrStringInvalid      = errors.New("watcher: decoded string length out of range")
	ErrPathResolveFailure = errors.New("watcher: could not resolve songs root")
)
