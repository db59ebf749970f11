package core

import (
	"os"
	"strings"
)

const (
	DefaultConfigPath = "/etc/sampled/config.hcl"

	// DetachedEnv marks a process that was re-executed by the launcher.
	DetachedEnv = "SAMPLED_DETACHED"
)

// Configuration represents the complete sampled configuration
type Configuration struct {
	ConfigPath string // Path of the loaded config file, empty when defaults were used
	Verbose    int    // Verbosity level, 1 or more enables debug records
	Foreground bool   // Run attached to the invoking terminal
	Tag        string // Log tag override, empty means derive from argv[0]
}

// DefaultConfig returns a Configuration with default values
func DefaultConfig() *Configuration {
	return &Configuration{}
}

// ConfigExists checks if a config file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return err == nil
}

// ProgramName derives the display name used to tag log records from the
// invocation argument: everything after the final '/', or the whole argument
// when it contains none.
//
//   - "/usr/sbin/sampled" → "sampled"
//   - "sampled" → "sampled"
//   - "./bin/" → ""
func ProgramName(arg0 string) string {
	if i := strings.LastIndexByte(arg0, '/'); i >= 0 {
		return arg0[i+1:]
	}
	return arg0
}

// LogTag returns the tag for the logging channel, preferring the configured
// override over the name derived from argv[0].
func (c *Configuration) LogTag(arg0 string) string {
	if c != nil && c.Tag != "" {
		return c.Tag
	}
	return ProgramName(arg0)
}
