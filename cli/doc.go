// Package cli is the command line interface of formulate.
//
// # Usage
//
//	formulate [flags] <command> [args]
//
// Commands:
//
//	serve      Serve the HTTP API (default :8080)
//	eval       Evaluate an expression (default command)
//	validate   Compile expressions and report tokens, RPN and complexity
//	repl       Interactive session with completion and signature hints
//	version    Print program and logic versions
//	init       Write the configuration file from the current flags
//
// # Configuration
//
// Flags may be preset in a YAML file at $XDG_CONFIG_HOME/formulate/config.yaml.
// Nested keys are joined with '-', and subcommand flags may be grouped under
// the command name:
//
//	log:
//	  level: debug
//	  format: json
//	max-length: 4000
//	serve:
//	  addr: ":9090"
//	  report-interval: 30s
//
// Command-line flags override the file.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output encoding (json, text)
//   - --log-time-layout: timestamp layout, a Go layout or name
//   - --log-caller: include source location
//   - --[no-]log-pretty: colorized text, indented JSON
//
// # Profiling Options
//
// Only present when built with the pprof build tag
// (go build -tags pprof):
//
//   - --pprof-mode: profile to record (see package profile)
//   - --pprof-dir: output directory (default ~/.cache/formulate/pprof)
//
// # Examples
//
//	formulate eval 'ROUND(SUM(1, 2, 3) / 7, 2)'
//	formulate eval '{{p}} * 2' --role p=@value.price --value @value.price=12,5
//	formulate validate -f formulas.txt -o yaml
//	formulate --log-level=debug serve --addr=:9090
package cli
