// Package config resolves regression-sniffer options.
//
// It handles:
//   - Loading dotenv files without overriding the real environment
//   - Environment defaults for command line options (disabled by NODEFAULTS)
//   - API token lookup
//   - Locations of the state file and repository clones
package config
