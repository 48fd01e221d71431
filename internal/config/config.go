// Package config holds the control loop's public options and its tick
// cadences, expressed as an in-process functional-options contract. There
// is no persisted config file: the only durable output is the optional
// sink file itself.
package config

import "time"

const (
	// DefaultFilePath is the sink file path when WriteToFile is enabled and
	// no path is given.
	DefaultFilePath = "/tmp/osu_path"

	// NoTargetInterval is the poll cadence while no target process exists.
	NoTargetInterval = 300 * time.Millisecond
	// ActiveInterval is the poll cadence once a beatmap is being read.
	ActiveInterval = 500 * time.Millisecond
	// ScanMissBackoff is the cadence after a failed signature scan.
	ScanMissBackoff = 3 * time.Second
)

// Options holds the control loop's public configuration.
type Options struct {
	RunOnce     bool
	WriteToFile bool
	FilePath    string
}

// Option mutates an Options during construction, following the
// Option func(*T) pattern used throughout this codebase's ancestry.
type Option func(*Options)

// New builds an Options with its defaults applied, then layers opts on
// top.
func New(opts ...Option) Options {
	o := Options{
		RunOnce:     false,
		WriteToFile: false,
		FilePath:    DefaultFilePath,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRunOnce sets whether the loop stops after its first successful emit.
func WithRunOnce(v bool) Option {
	return func(o *Options) { o.RunOnce = v }
}

// WithWriteToFile enables the change sink.
func WithWriteToFile(v bool) Option {
	return func(o *Options) { o.WriteToFile = v }
}

// WithFilePath overrides the sink file path. Setting a non-empty path does
// not itself enable the sink; pair with WithWriteToFile.
func WithFilePath(path string) Option {
	return func(o *Options) {
		if path != "" {
			o.FilePath = path
		}
	}
}
