// Package cmd implements the formulate subcommands.
//
// Every command's Run method receives the parsed [context.Context] and an
// [*Env] holding the shared [formula.Engine], the configured logger and the
// output streams.
package cmd

var (
	// CacheIdentifier is the kong variable holding the runtime cache
	// directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable holding the configuration file
	// path.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable holding the default REPL history
	// file path.
	HistoryIdentifier = "history"
)
