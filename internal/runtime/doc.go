// Package runtime provides the execution context for regression-sniffer commands.
//
// It encapsulates shared dependencies needed by actions, such as the logger,
// the ticketing and pull request clients and the working directories.
package runtime
