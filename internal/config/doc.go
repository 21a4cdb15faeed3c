// Package config provides configuration management for seoaudit.
//
// Configuration comes from three places:
//   - CLI flags, collected into Config and checked by Config.Validate
//   - the .seoaudit YAML file: per-site settings, scoring tables,
//     classifier rules and Jira settings
//   - the environment (optionally seeded from a .env file) for credentials
//
// Scoring tables start from DefaultScoring and the file only needs to list
// the values it changes.
package config
