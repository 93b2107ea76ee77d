// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. dotenv file
//  2. Environment variables
//  3. Command-line flags
//  4. JSON config file
//
// Fields left empty by every source take the values of the built-in
// defaults. The main entry point is [GetStructuredConfig].
package config
