// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

type (
	// ArtifactNaming holds the filename conventions for one target OS.
	ArtifactNaming struct {
		// GOOS is the target operating system.
		GOOS string
		// DLLPrefix is prepended to dynamic library names ("lib" on Unix).
		DLLPrefix string
		// DLLSuffix is the dynamic library extension, including the dot.
		DLLSuffix string
		// ExeSuffix is the executable extension, including the dot if any.
		ExeSuffix string
	}
)

// Host is the artifact naming for the OS this binary runs on.
var Host = NamingFor(runtime.GOOS)

// NamingFor returns the artifact naming conventions for goos.
func NamingFor(goos string) ArtifactNaming {
	switch goos {
	case Windows:
		return ArtifactNaming{GOOS: goos, DLLPrefix: "", DLLSuffix: ".dll", ExeSuffix: ".exe"}
	case Darwin:
		return ArtifactNaming{GOOS: goos, DLLPrefix: "lib", DLLSuffix: ".dylib", ExeSuffix: ""}
	default:
		return ArtifactNaming{GOOS: goos, DLLPrefix: "lib", DLLSuffix: ".so", ExeSuffix: ""}
	}
}

// DLLFilename returns the library filename for base, e.g. "libfoo-0.1.so".
func (n ArtifactNaming) DLLFilename(base string) string {
	return n.DLLPrefix + base + n.DLLSuffix
}

// ExeFilename returns the executable filename for base.
func (n ArtifactNaming) ExeFilename(base string) string {
	return base + n.ExeSuffix
}

// Reserved reports whether name cannot be used as a filename on the target OS.
func (n ArtifactNaming) Reserved(name string) bool {
	return n.GOOS == Windows && IsWindowsReservedName(name)
}
