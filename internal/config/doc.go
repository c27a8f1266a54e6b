// Package config loads, normalizes, and validates festive configuration data.
//
// It supplies the hosted API defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a local .env file, and honours
// environment fallbacks such as FESTIVE_USER_ID. The Config type centralizes
// every knob the CLI and the local web surface need so endpoints, job
// parameters, and polling limits are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs, canonical log formats, and clear validation errors.
package config
