package versions

import "github.com/Masterminds/semver/v3"

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
// It uses semantic versioning for comparison when both strings are valid semver,
// and falls back to lexicographic string comparison otherwise.
func IsNewerVersion(newVersion, oldVersion string) bool {
	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)

	if errNew != nil || errOld != nil {
		return newVersion > oldVersion
	}

	return newSemver.GreaterThan(oldSemver)
}

// RegistryNewerThanTools reports whether a registry was last updated with a
// tools release newer than ToolsVersion. Dev suffixes such as "3.4.0dev" are
// treated as the release they precede. Unparseable versions are never newer.
func RegistryNewerThanTools(registryVersion string) bool {
	if registryVersion == "" {
		return false
	}
	v, err := semver.NewVersion(normalizeDevSuffix(registryVersion))
	if err != nil {
		return false
	}
	return v.GreaterThan(semver.MustParse(ToolsVersion))
}

func normalizeDevSuffix(version string) string {
	const suffix = "dev"
	if len(version) > len(suffix) && version[len(version)-len(suffix):] == suffix &&
		version[len(version)-len(suffix)-1] != '-' {
		return version[:len(version)-len(suffix)] + "-" + suffix
	}
	return version
}
