// Package config provides configuration loading, validation, and defaults
// for Saturn.
//
// Configuration is loaded from a YAML file with optional SATURN_* environment
// variable overrides. Every field has a documented default so an empty file
// (or no file at all, via DefaultConfig) yields a working configuration.
//
// A Watcher built on fsnotify can observe the configuration file and notify
// the caller on change, which the server uses to force a provider
// rediscovery without a restart.
package config
