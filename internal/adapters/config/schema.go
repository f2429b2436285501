package config

// keyDelimiter separates nested configuration keys. Dots are left alone so
// package names such as "lodash.merge" survive as map keys.
const keyDelimiter = "::"

// envPrefix is the prefix of environment variable overrides (CRATE_BUNDLE_OUT).
const envPrefix = "CRATE"

// defaults are applied before the configuration file is read.
var defaults = map[string]any{
	"semver::version":                     "1.0.0",
	"bundle::out":                         "build",
	"bundle::tmp":                         ".tmp",
	"bundle::license":                     "MIT",
	"release::tolerateUnknownLoginOutput": false,
	"toolchain::packageManager":           "yarn",
	"toolchain::formatter":                "prettier",
	"toolchain::registry":                 "npm",
}
