package version

// Version is the current version of flipper.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-flipper/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.3.0"

// StoreFormat is the layout version of the result store tables.
// Bump the minor version whenever a column or collection changes.
const StoreFormat = "1.0.0"

// GetVersion returns the current version of flipper.
func GetVersion() string {
	return Version
}
