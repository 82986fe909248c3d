// Package config provides hierarchical configuration resolution for
// appkit applications.
//
// Values are resolved from three layers, highest precedence last:
//
//	defaults < config file < environment variables
//
// The file layer is read with Viper and supports YAML, JSON, and TOML.
// Environment variables use the application prefix with underscore-separated
// paths (e.g. MYAPP_LOGGING_LEVEL overrides logging.level) and are coerced
// to the type of the corresponding default value.
//
// # Usage
//
//	res, err := config.New("myapp", config.WithDefaults(defaults))
//	level := res.GetString("logging.level", "info")
//
// A missing config file is never an error; a malformed existing file fails
// construction with a *ParseError.
package config
