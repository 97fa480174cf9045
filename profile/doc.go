// Package profile wraps [github.com/pkg/profile] for optional runtime
// profiling of the formulate command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o formulate .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need their own build constraints.
//
// # Modes
//
//   - allocs, heap, mem: memory allocation profiles
//   - block, mutex: synchronization contention
//   - cpu, clock: CPU and wall-clock time
//   - goroutine, thread: goroutine and OS thread creation
//   - trace: execution trace
//
// A profile is written to the configured directory when the profiler is
// stopped, named after its mode (cpu.pprof, mem.pprof, trace.out):
//
//	formulate --pprof-mode=cpu serve
//	go tool pprof -http=: ~/.cache/formulate/pprof/cpu.pprof
//
// The pprof build also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux]. The HTTP API does not serve that mux.
package profile
