// Package cmd holds build metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/thoreinstein/keyconfig/cmd.Version=v1.2.0 \
//	  -X github.com/thoreinstein/keyconfig/cmd.Commit=$(git rev-parse HEAD)"
package cmd

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Short returns Version followed by the abbreviated commit when one was
// stamped, e.g. "v1.2.0 (3f9c2ab)".
func Short() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + " (" + c + ")"
}
