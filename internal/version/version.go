package version

// Version is the current version of the quantpulse binary.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/quantpulse-lab/quantpulse/internal/version.Version=1.2.3"
// The default value indicates a development build.
var Version = "dev"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}
