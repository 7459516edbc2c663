package rebuild

import "os"

// Environment variables read by OptionsFromEnv. npm exposes
// `--wcjs_runtime=...` style install flags under these names.
const (
	EnvRuntime        = "npm_config_wcjs_runtime"
	EnvRuntimeVersion = "npm_config_wcjs_runtime_version"
	EnvArch           = "npm_config_wcjs_arch"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OptionsFromEnv reads the runtime overrides. Unset or empty variables leave
// the corresponding field empty. A nil lookup reads the process environment.
func OptionsFromEnv(lookup LookupFunc) Options {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Options{
		Runtime:        get(EnvRuntime),
		RuntimeVersion: get(EnvRuntimeVersion),
		Arch:           get(EnvArch),
	}
}
