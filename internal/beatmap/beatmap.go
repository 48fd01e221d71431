// Package beatmap holds the small value types shared between the pointer
// walker and the control loop: the resolved songs root and the combined
// report emitted on every observed change.
package beatmap

import "strings"

// Report is the fully resolved location of the beatmap the game currently
// has loaded.
type Report struct {
	// SongsRoot is the Linux path to the beatmap root directory. It may be
	// empty if path resolution has not yet succeeded (PathResolveFailure).
	SongsRoot string
	// RelativePath is folder + "/" + file, "\" already normalized to "/".
	RelativePath string
}

// Full joins SongsRoot and RelativePath with "/", tolerating an empty
// SongsRoot (PathResolveFailure leaves downstream consumers to recover the
// prefix themselves, per spec).
func (r Report) Full() string {
	if r.SongsRoot == "" {
		return r.RelativePath
	}
	return strings.TrimRight(r.SongsRoot, "/") + "/" + r.RelativePath
}

// Join builds the folder/file relative path from the raw strings recovered
// by the pointer walker, normalizing backslashes to forward slashes.
func Join(folder, file string) string {
	combined := folder + "/" + file
	return strings.ReplaceAll(combined, "\\", "/")
}
