// Package configuration implements reading of the application settings from
// a configuration file and the process environment.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
)

const (
	// EnvPrefix is the prefix of all configuration keys.
	EnvPrefix = "GOMV_"

	KeyVerbose     = EnvPrefix + "VERBOSE"
	KeyDryRun      = EnvPrefix + "DRY_RUN"
	KeyInteractive = EnvPrefix + "INTERACTIVE"
	KeyParents     = EnvPrefix + "PARENTS"
	KeyNoClobber   = EnvPrefix + "NO_CLOBBER"
	KeyCheckInUse  = EnvPrefix + "CHECK_IN_USE"
	KeyVerifyCopy  = EnvPrefix + "VERIFY_COPY"
	KeyExclude     = EnvPrefix + "EXCLUDE"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Settings is the principal structure holding the application settings.
type Settings struct {
	Verbose     int
	DryRun      bool
	Interactive bool
	Parents     bool
	NoClobber   bool
	CheckInUse  bool
	VerifyCopy  bool
	Exclude     []string
}

// DefaultSettings returns the [Settings] used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		VerifyCopy: true,
	}
}

// DefaultPath returns the location of the configuration file below the
// user's XDG configuration directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "gomv", "gomv.conf")
}

// Handler is the principal implementation for the configuration services.
type Handler struct {
	reader  genericConfigProvider
	environ func() []string
}

// NewHandler returns a pointer to a new configuration [Handler] reading
// files with the given reader and the environment of the process.
func NewHandler(reader genericConfigProvider) *Handler {
	return &Handler{
		reader:  reader,
		environ: os.Environ,
	}
}

// Load returns the [Settings] from the configuration file at path, with
// environment variables taking precedence over the file. An empty path
// selects [DefaultPath], which may not exist; an explicitly given path must.
func (c *Handler) Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	envMap, err := c.reader.Read(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), fmt.Errorf("(config) failed to read %s: %w", path, err)
		}
		envMap = make(map[string]string)
	} else {
		slog.Debug("Read configuration file:", "path", path)
	}

	for _, kv := range c.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, EnvPrefix) {
			envMap[key] = value
		}
	}

	return c.settingsFromMap(envMap), nil
}

func (c *Handler) settingsFromMap(envMap map[string]string) Settings {
	settings := DefaultSettings()

	if v := c.MapKeyToInt(envMap, KeyVerbose); v >= 0 {
		settings.Verbose = v
	}

	settings.DryRun = c.MapKeyToBool(envMap, KeyDryRun, settings.DryRun)
	settings.Interactive = c.MapKeyToBool(envMap, KeyInteractive, settings.Interactive)
	settings.Parents = c.MapKeyToBool(envMap, KeyParents, settings.Parents)
	settings.NoClobber = c.MapKeyToBool(envMap, KeyNoClobber, settings.NoClobber)
	settings.CheckInUse = c.MapKeyToBool(envMap, KeyCheckInUse, settings.CheckInUse)
	settings.VerifyCopy = c.MapKeyToBool(envMap, KeyVerifyCopy, settings.VerifyCopy)
	settings.Exclude = c.MapKeyToList(envMap, KeyExclude)

	return settings
}

// MapKeyToString returns the value of a key, or an empty string.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

// MapKeyToInt returns the value of a key as integer, or -1 if the key is not
// set or not a number.
func (c *Handler) MapKeyToInt(envMap map[string]string, key string) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Warning (config): ignoring invalid number", "key", key, "value", value)

		return -1
	}

	return intValue
}

// MapKeyToBool returns the value of a key as boolean, or the fallback if
// the key is not set or not a boolean.
func (c *Handler) MapKeyToBool(envMap map[string]string, key string, fallback bool) bool {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return fallback
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Warning (config): ignoring invalid boolean", "key", key, "value", value)

		return fallback
	}

	return boolValue
}

// MapKeyToList returns the comma-separated elements of a key, without
// surrounding whitespace and empty elements.
func (c *Handler) MapKeyToList(envMap map[string]string, key string) []string {
	var list []string

	for _, elem := range strings.Split(c.MapKeyToString(envMap, key), ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			list = append(list, elem)
		}
	}

	return list
}
