// Package config loads, normalizes, and validates reelsplit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: storage directories, the API bind address, upload
// limits, segmentation defaults, retention cadence, and external tool
// overrides.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
