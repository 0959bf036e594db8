// Package misc keeps build time information.
package misc

// Set by the linker: -X logoprev/misc.version=... -X logoprev/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return "logoprev"
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
