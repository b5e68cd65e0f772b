package pool

// NumChunks is the fixed number of work units a parallel phase is split into.
// It does not depend on the worker count, so partitioning is identical on any machine.
const NumChunks = 16

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns End-Start.
func (r Range) Len() int { return r.End - r.Start }

// Chunks splits [0,n) into at most k contiguous non-empty ranges whose
// lengths differ by at most one.
func Chunks(n, k int) []Range {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		k = 1
	}
	if k > n {
		k = n
	}

	out := make([]Range, k)
	size, rem := n/k, n%k
	start := 0
	for i := range out {
		end := start + size
		if i < rem {
			end++
		}
		out[i] = Range{Start: start, End: end}
		start = end
	}
	return out
}
