package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
)

// Summary is printed once after a successful run.
type Summary struct {
	Matched int
	Total   int
	Min     float64
	Max     float64
	Unit    string
	Output  string
}

// Reporter writes human-readable progress to w, usually stdout. It never
// affects the outcome of a run.
type Reporter struct {
	w     io.Writer
	clock clockwork.Clock
}

// NewReporter creates a Reporter. clock is also used by the pipeline for
// stage timings.
func NewReporter(w io.Writer, clock clockwork.Clock) *Reporter {
	return &Reporter{w: w, clock: clock}
}

// Step prints one status line.
func (r *Reporter) Step(name string, elapsed time.Duration, detail string, err error) {
	status := "[ok]  "
	if err != nil {
		status = "[FAIL]"
		detail = err.Error()
	}
	fmt.Fprintf(r.w, "%s %-16s %8s  %s\n", status, name, elapsed.Round(time.Millisecond), detail)
}

// Summary prints the closing block.
func (r *Reporter) Summary(s Summary) {
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "States with data: %d/%d\n", s.Matched, s.Total)
	fmt.Fprintf(r.w, "Min:              %.2f %s\n", s.Min, s.Unit)
	fmt.Fprintf(r.w, "Max:              %.2f %s\n", s.Max, s.Unit)
	fmt.Fprintf(r.w, "Output:           %s\n", s.Output)
}
