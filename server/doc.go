// Package server exposes a [formula.Engine] over HTTP.
//
// Routes:
//
//	POST /evaluate/formula      evaluate an expression or token list
//	POST /formulas/validate     compile an expression and describe it
//	GET  /logic/version         current logic version
//	GET  /formulas-version      alias of /logic/version
//	POST /formulas/cache/clear  drop all cached programs
//	GET  /logic/metrics         counters, cache statistics and version
//
// Request and response bodies are JSON. Expressions the engine rejects
// before execution answer 400; problems met while executing are listed in
// the errors of a 200 response.
package server
