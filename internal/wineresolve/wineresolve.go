// Package wineresolve turns the Windows-style path the pointer walker
// recovers into a real Linux path. It reads the target process's
// environment and Wine prefix, parses the Wine registry for the game's
// install path, translates drive letters through dosdevices, reads the
// per-user osu! config for BeatmapDirectory, and repairs case mismatches
// against the real filesystem.
package wineresolve

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotFound is returned by Repair when no case-insensitive match
// exists for some path segment.
var ErrPathNotFound = errors.New("wineresolve: path not found")

// ErrInstallPathNotFound means neither registry hive yielded an osu!
// install path.
var ErrInstallPathNotFound = errors.New("wineresolve: install path not found")

// ErrBeatmapDirectoryNotFound means the user's cfg file had no
// "BeatmapDirectory = " line.
var ErrBeatmapDirectoryNotFound = errors.New("wineresolve: BeatmapDirectory not found in config")

// subkeys are matched case-insensitively against registry lines.
var subkeys = []string{
	`osu\\shell\\open\\command`,
	`osustable.File.osz\\shell\\open\\command`,
}

// DefaultLoginUIDFallback is the UID substituted when loginuid reads as
// the "no login session" sentinel (4294967295). This assumes UID 1000 is
// the one running the target, which may not hold on every system, but it
// is a reasonable default for the common single-user desktop case.
const DefaultLoginUIDFallback = "1000"

const noLoginUID = "4294967295"

// Resolver resolves a target process's songs root through its Wine
// environment, registry, and per-user config. ProcRoot and PasswdPath are
// overridable, mirroring proclocator.Locator's ProcRoot, so tests can point
// both at a synthetic tree under t.TempDir() instead of the real /proc and
// /etc/passwd.
type Resolver struct {
	ProcRoot   string
	PasswdPath string
}

// New builds a Resolver against the real /proc and /etc/passwd.
func New() *Resolver {
	return &Resolver{ProcRoot: "/proc", PasswdPath: "/etc/passwd"}
}

// Prefix discovers WINEPREFIX by reading <ProcRoot>/<pid>/environ. If the
// variable is absent, it falls back to <home-of-uid>/.wine using
// <ProcRoot>/<pid>/loginuid and PasswdPath.
func (r *Resolver) Prefix(pid int, warn func(string)) (string, error) {
	environPath := fmt.Sprintf("%s/%d/environ", r.ProcRoot, pid)
	data, err := os.ReadFile(environPath)
	if err != nil {
		return "", fmt.Errorf("wineresolve: read environ: %w", err)
	}

	for _, record := range strings.Split(string(data), "\x00") {
		if value, ok := strings.CutPrefix(record, "WINEPREFIX="); ok && value != "" {
			return value, nil
		}
	}

	_, home, err := r.userInfoForPID(pid, warn)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".wine"), nil
}

// userInfoForPID resolves <ProcRoot>/<pid>/loginuid to a (username, home)
// pair via PasswdPath. When loginuid reports the "no login session"
// sentinel, it falls back to DefaultLoginUIDFallback and reports that via
// warn.
func (r *Resolver) userInfoForPID(pid int, warn func(string)) (name, home string, err error) {
	raw, err := os.ReadFile(fmt.Sprintf("%s/%d/loginuid", r.ProcRoot, pid))
	if err != nil {
		return "", "", fmt.Errorf("wineresolve: read loginuid: %w", err)
	}
	uid := strings.TrimSpace(string(raw))

	if uid == noLoginUID {
		if warn != nil {
			warn(fmt.Sprintf("loginuid reports no login session for pid %d, falling back to uid %s", pid, DefaultLoginUIDFallback))
		}
		uid = DefaultLoginUIDFallback
	}

	home, name, err = r.lookupPasswd(uid)
	if err != nil {
		return "", "", err
	}
	return name, home, nil
}

// lookupPasswd finds the row of PasswdPath whose uid field matches and
// returns (home, username).
func (r *Resolver) lookupPasswd(uid string) (home, name string, err error) {
	f, err := os.Open(r.PasswdPath)
	if err != nil {
		return "", "", fmt.Errorf("wineresolve: open %s: %w", r.PasswdPath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) < 6 {
			continue
		}
		if fields[2] == uid {
			return fields[5], fields[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return "", "", fmt.Errorf("wineresolve: no %s entry for uid %s", r.PasswdPath, uid)
}

// Resolve sequences the full path-resolution pipeline end to end and
// returns the SongsRoot for pid: the WinePrefix, the osu! install path
// from the Wine registry, the BeatmapDirectory line from the user's cfg,
// translated and case-repaired into a real Linux directory.
func (r *Resolver) Resolve(pid int, warn func(string)) (string, error) {
	prefix, err := r.Prefix(pid, warn)
	if err != nil {
		return "", err
	}

	regInstallPath, err := InstallPath(prefix)
	if err != nil {
		return "", err
	}

	installPath, err := DosDevicesPath(prefix, regInstallPath)
	if err != nil {
		return "", err
	}

	user, _, err := r.userInfoForPID(pid, warn)
	if err != nil {
		return "", err
	}

	beatmapDir, err := BeatmapDirectory(installPath, user)
	if err != nil {
		return "", err
	}

	songsRoot, err := RemapWindowsPath(prefix, installPath, beatmapDir)
	if err != nil {
		return "", err
	}
	return songsRoot, nil
}

// InstallPath searches system.reg then user.reg within prefix for the
// osu!.exe shell-open-command registration and returns the Windows-style
// install path it names.
func InstallPath(prefix string) (string, error) {
	for _, hive := range []string{"system.reg", "user.reg"} {
		path, err := scanHive(filepath.Join(prefix, hive))
		if err == nil {
			return path, nil
		}
	}
	return "", ErrInstallPathNotFound
}

// scanHive streams one registry hive file, looking for a subkey line and
// then, on the following lines, for the first occurrence of "osu!.exe".
func scanHive(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	armed := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")

		if !armed {
			if lineHasAnySubkey(line) {
				armed = true
			}
			continue
		}

		if installPath, ok := extractInstallPath(line); ok {
			return installPath, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", ErrInstallPathNotFound
}

func lineHasAnySubkey(line string) bool {
	lower := strings.ToLower(line)
	for _, key := range subkeys {
		if strings.Contains(lower, strings.ToLower(key)) {
			return true
		}
	}
	return false
}

// extractInstallPath finds the first case-sensitive "osu!.exe", truncates
// there, then finds the last ":\\" before it; the install path starts one
// character before that ":\\" (i.e. at the drive letter).
func extractInstallPath(line string) (string, bool) {
	exeIdx := strings.Index(line, "osu!.exe")
	if exeIdx < 0 {
		return "", false
	}
	truncated := line[:exeIdx]

	driveSep := strings.LastIndex(truncated, `:\\`)
	if driveSep < 1 {
		return "", false
	}

	return truncated[driveSep-1:], true
}

// DosDevicesPath translates a Windows-style path with a drive letter (e.g.
// "C:\Games\osu!\") into the Linux path it maps to through prefix's
// dosdevices directory, canonicalizing through any symlinks.
func DosDevicesPath(prefix, windowsPath string) (string, error) {
	// Registry hives escape every backslash as two ("\\"); collapse that
	// back to a single separator before splitting on the drive letter, so
	// paths extracted straight out of InstallPath work without a separate
	// unescaping pass.
	windowsPath = strings.ReplaceAll(windowsPath, `\\`, `\`)

	if len(windowsPath) < 2 || windowsPath[1] != ':' {
		return "", fmt.Errorf("wineresolve: %q has no drive letter", windowsPath)
	}

	drive := strings.ToLower(windowsPath[:1])
	rest := strings.ReplaceAll(windowsPath[2:], `\`, "/")

	dosdevicesRoot := filepath.Join(prefix, "dosdevices")
	candidate := filepath.Join(dosdevicesRoot, drive+":"+rest)

	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		return resolved, nil
	}

	// The drive-letter mount itself (<prefix>/dosdevices/<letter>:) must
	// already exist; only the segments past it may need case repair.
	driveMount := filepath.Join(dosdevicesRoot, drive+":")
	resolvedMount, err := filepath.EvalSymlinks(driveMount)
	if err != nil {
		return "", fmt.Errorf("wineresolve: resolve drive mount %q: %w", driveMount, err)
	}

	repaired, err := Repair(filepath.Join(resolvedMount, rest), len(resolvedMount))
	if err != nil {
		return "", fmt.Errorf("wineresolve: resolve dosdevices path %q: %w", candidate, err)
	}
	return repaired, nil
}

// BeatmapDirectory reads installPath/osu!.<user>.cfg and returns the
// (possibly still Windows-style) value of its "BeatmapDirectory = " line.
func BeatmapDirectory(installPath, user string) (string, error) {
	cfgPath := filepath.Join(installPath, fmt.Sprintf("osu!.%s.cfg", user))
	f, err := os.Open(cfgPath)
	if err != nil {
		return "", fmt.Errorf("wineresolve: open %s: %w", cfgPath, err)
	}
	defer f.Close()

	const prefix = "BeatmapDirectory = "
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if value, ok := strings.CutPrefix(line, prefix); ok {
			value = strings.TrimSpace(value)
			return strings.ReplaceAll(value, `\`, "/"), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", ErrBeatmapDirectoryNotFound
}

// Repair walks path segments starting at byte offset pos (the length of a
// known-good prefix), substituting the on-disk spelling for any segment
// that doesn't match case-sensitively. Only trailing whitespace and "."
// characters are stripped from each segment before matching, so a segment
// that legitimately starts with one of those characters still matches.
func Repair(path string, pos int) (string, error) {
	if pos > len(path) {
		pos = len(path)
	}
	built := path[:pos]
	remainder := strings.TrimPrefix(path[pos:], "/")

	for _, rawSegment := range strings.Split(remainder, "/") {
		segment := strings.TrimRight(rawSegment, " \t.")
		// "/" was already stripped as the split delimiter, but trailing
		// slashes within a segment (shouldn't occur after Split) are
		// stripped too.
		segment = strings.TrimRight(segment, "/")
		if segment == "" {
			continue
		}

		candidate := filepath.Join(built, segment)
		if _, err := os.Lstat(candidate); err == nil {
			built = candidate
			continue
		}

		match, err := matchCaseInsensitive(built, segment)
		if err != nil {
			return "", ErrPathNotFound
		}
		built = filepath.Join(built, match)
	}

	return filepath.EvalSymlinks(built)
}

func matchCaseInsensitive(dir, segment string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	lowerSegment := strings.ToLower(segment)
	for _, entry := range entries {
		if strings.ToLower(entry.Name()) == lowerSegment {
			return entry.Name(), nil
		}
	}
	return "", ErrPathNotFound
}

// RemapWindowsPath maps a Windows-style absolute path (with a drive letter)
// or a path relative to installPath into a Linux path, applying dosdevices
// translation and case repair as needed. This combines drive-letter
// translation and case repair into the one operation BeatmapDirectory
// resolution needs.
func RemapWindowsPath(prefix, installPath, winPath string) (string, error) {
	var base string
	var err error

	if len(winPath) >= 2 && winPath[1] == ':' {
		base, err = DosDevicesPath(prefix, winPath)
	} else {
		base = filepath.Join(installPath, winPath)
	}
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(base); statErr == nil {
		return base, nil
	}

	// Walk from the install/dosdevices root forward, repairing case along
	// the way.
	knownGoodLen := len(commonPrefixDir(base))
	return Repair(base, knownGoodLen)
}

// commonPrefixDir returns the longest directory prefix of path that exists
// on disk, used as the starting point for case repair.
func commonPrefixDir(path string) string {
	dir := path
	for dir != "/" && dir != "." {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir
}
