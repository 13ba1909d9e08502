// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/unpuzzle-app/unpuzzle/constant"
	"github.com/unpuzzle-app/unpuzzle/filesystem"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "UNPUZZLE_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
// Direct override: The path resolution can be explicitly specified via the UNPUZZLE_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Unpuzzle))
}

// Cache resolves the absolute path to the application's persistent cache directory.
// Compliance: Adheres to the XDG_CACHE_HOME specification or platform-specific equivalent.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		// Fallback: Revert to a localized cache directory if the system-provided path is inaccessible.
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Unpuzzle))
}

// Logs resolves the absolute path to the directory used for application diagnostic and audit logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the absolute path to the localized watch progress persistence file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries resolves the absolute path to the localized course search suggestion registry.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// CourseBinds resolves the absolute path to the localized title-to-course binding registry.
func CourseBinds() string {
	return filepath.Join(Cache(), "course_binds.json")
}

// Transcripts resolves the absolute path to the localized transcript cache file.
func Transcripts() string {
	return filepath.Join(Cache(), "transcripts.json")
}

// SyncQueue resolves the absolute path to the deferred mutation queue used when the platform is unreachable.
func SyncQueue() string {
	return filepath.Join(Config(), "failed_syncs.json")
}

// Graders resolves the absolute path to the directory containing instructor-authored Lua grader scripts.
func Graders() string {
	return ensureDir(filepath.Join(Config(), "graders"))
}

// Temp resolves a unique, volatile filesystem path for transient application artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Unpuzzle))
}
