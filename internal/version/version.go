package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X balatro-setup/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X balatro-setup/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X balatro-setup/internal/version.Date={{.Date}}
)
