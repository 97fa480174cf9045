package profile

// Tag names the build tag enabling profiling and the default output
// subdirectory.
const Tag = "pprof"

// Stopper ends a running profile and flushes it to disk.
type Stopper interface{ Stop() }

// Profiler configures one profiling run.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Start begins profiling. An empty or unsupported Mode, or a build without
// the pprof tag, yields a no-op [Stopper].
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
