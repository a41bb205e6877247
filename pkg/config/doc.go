// Package config provides configuration management for Hermes.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HERMES_SECTION_FIELD.
// For example:
//
//   - HERMES_PROXY_LISTEN_ADDRESS overrides proxy.listen_address
//   - HERMES_REGISTRY_PROVIDERS_FILE overrides registry.providers_file
//   - HERMES_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// Note that the provider and token tables themselves are NOT part of this
// package: they live in separate pipe-delimited files referenced by
// registry.providers_file and registry.tokens_file, and are loaded by the
// registry package so they can be reloaded at runtime without touching the
// server configuration.
package config
