// Package config loads, normalizes, and validates chataudio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CHATAUDIO_CONTACT and CHATAUDIO_DB. The Config type replaces the values the
// export used to hard-code: which contact to match, where the message
// database lives, and where copied audio should land.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
