package version

const (
	// Name of the service as reported by /health and the CLI banner.
	Name = "CyberShield Intelligence"
)

var (
	Version = "0.4.0"
	// BuildTime and GitCommit are set during build via ldflags.
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full returns the complete version string.
func Full() string {
	if BuildTime != "unknown" && GitCommit != "unknown" {
		return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
	}
	return Version
}

// UserAgent is sent on outbound feed requests.
func UserAgent() string {
	return "CyberShield-Intel/" + Version
}
