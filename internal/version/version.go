// ABOUTME: Build and product identification
// ABOUTME: Version is overridable at link time with -ldflags "-X"
package version

// Version is the release string reported by --version
var Version = "0.3.0"

const (
	// Product names the tool in logs and usage text
	Product = "automashup"

	// Manufacturer identifies the publisher in usage text
	Manufacturer = "automashup-go"
)

// String returns "<product> <version>"
func String() string {
	return Product + " " + Version
}
