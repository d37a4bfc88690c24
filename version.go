package tranzlate

// Version information for tranzlate.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ti-oluwa/tranzlate.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "tranzlate"

	// Description is a short description of the application.
	Description = "One interface over many translation engines"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ti-oluwa/tranzlate"
)

// Build information, typically set via ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit hash when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns the user agent sent by HTTP engines.
func UserAgent() string {
	return Name + "/" + Version
}
