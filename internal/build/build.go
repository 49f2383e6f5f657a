// Package build holds information stamped into the binary at link time.
package build

// Version is the release of cleardep. Release builds set it with
// -ldflags "-X go.trai.ch/cleardep/internal/build.Version=v1.2.3".
var Version = "dev"

// Commit is the revision the binary was built from. It is empty unless set by the linker.
var Commit = ""

// Info returns the version followed by the commit when one is known.
func Info() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
