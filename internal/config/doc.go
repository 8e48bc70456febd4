// Package config loads the keyconfig CLI's own settings.
//
// The settings live in <ConfigDir>/config.yaml and may be overridden with
// KEYCONFIG_ prefixed environment variables:
//
//	version: 1
//	settings_file: ~/.config/keyconfig/settings.yaml
//	env_prefix: APP_
//	log_format: text
//	mask_secrets: true
//
// Values are read through viper and bound into [Config] with the keyconfig
// engine itself, so defaults and required keys follow the same struct tags
// as any other bound type.
package config
