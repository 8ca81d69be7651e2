package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckCompatibility checks whether data written with the stored version can be read by the current one.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 can read 1.2.5)
func CheckCompatibility(current, stored string) error {
	current = strings.TrimPrefix(current, "v")
	stored = strings.TrimPrefix(stored, "v")

	if current == "main" || stored == "main" {
		return nil
	}

	currentSemver, err := semver.NewVersion(current)
	if err != nil {
		return fmt.Errorf("invalid current version '%s': %w", current, err)
	}

	storedSemver, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("invalid stored version '%s': %w", stored, err)
	}

	if currentSemver.Major() != storedSemver.Major() {
		return fmt.Errorf("major version mismatch: current is %d.x.x but data was written by %d.x.x",
			currentSemver.Major(), storedSemver.Major())
	}

	if currentSemver.Minor() != storedSemver.Minor() {
		return fmt.Errorf("minor version mismatch: current is %d.%d.x but data was written by %d.%d.x",
			currentSemver.Major(), currentSemver.Minor(),
			storedSemver.Major(), storedSemver.Minor())
	}

	return nil
}
