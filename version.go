package postageapp

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// APIVersion is the protocol version in every endpoint path.
const APIVersion = "1.1"

// Build information, injected via ldflags. The values below are fallbacks
// for development builds.
var (
	// Version is the semantic version of the library.
	Version = "dev"

	// GitCommit is the git commit hash when the binary was built.
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// VersionInfo contains version information for the library and the binary
// embedding it.
type VersionInfo struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// GetVersionInfo returns version information, filling the commit from the
// binary's VCS stamp when it was not injected.
func GetVersionInfo() *VersionInfo {
	info := &VersionInfo{
		Version:    Version,
		APIVersion: APIVersion,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "unknown" {
					info.GitCommit = setting.Value
					if len(info.GitCommit) > 12 {
						info.GitCommit = info.GitCommit[:12]
					}
				}
			case "vcs.time":
				if info.BuildDate == "unknown" {
					info.BuildDate = setting.Value
				}
			case "vcs.modified":
				if setting.Value == "true" && !strings.HasSuffix(info.GitCommit, "-dirty") {
					info.GitCommit += "-dirty"
				}
			}
		}
	}

	return info
}

// String returns a human-readable version string.
func (v *VersionInfo) String() string {
	parts := []string{
		fmt.Sprintf("Version: %s", v.Version),
		fmt.Sprintf("API: v.%s", v.APIVersion),
	}
	if v.GitCommit != "unknown" && v.GitCommit != "" {
		parts = append(parts, fmt.Sprintf("Commit: %s", v.GitCommit))
	}
	if v.BuildDate != "unknown" && v.BuildDate != "" {
		parts = append(parts, fmt.Sprintf("Built: %s", v.BuildDate))
	}
	parts = append(parts, fmt.Sprintf("Go: %s", v.GoVersion), fmt.Sprintf("Platform: %s", v.Platform))
	return strings.Join(parts, ", ")
}

// UserAgent returns the User-Agent sent with API calls. framework is the
// configured framework label.
func UserAgent(framework string) string {
	if framework == "" {
		return fmt.Sprintf("PostageApp Go %s", Version)
	}
	return fmt.Sprintf("PostageApp Go %s (%s)", Version, framework)
}
