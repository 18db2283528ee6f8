package app

// Build information populated via -ldflags at build time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// BuildInfo is reported by the health endpoint and the -version flag.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Build returns the linked build information.
func Build() BuildInfo {
	return BuildInfo{Version: BuildVersion, Commit: BuildCommit, Date: BuildDate}
}
