package platform

import (
	"fmt"
	"runtime"
)

// SupportedOS represents supported operating systems
type SupportedOS string

const (
	Linux   SupportedOS = "linux"
	Android SupportedOS = "android"
)

// GetOS returns the current operating system
func GetOS() SupportedOS {
	return SupportedOS(runtime.GOOS)
}

// IsSupported returns true if the given OS exposes the Linux CPU sysfs tree
func IsSupported(os SupportedOS) bool {
	return os == Linux || os == Android
}

// ValidateSupport returns an error if the current OS is not supported
func ValidateSupport() error {
	if !IsSupported(GetOS()) {
		return fmt.Errorf("unsupported operating system: %s. Supported: linux, android", runtime.GOOS)
	}
	return nil
}
