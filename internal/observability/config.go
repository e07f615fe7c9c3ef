package observability

// Config holds opt-in debugging surfaces. EnablePprofTrace mounts
// net/http/pprof under /debug/pprof on the arena's HTTP mux.
type Config struct {
	EnablePprofTrace bool
}
