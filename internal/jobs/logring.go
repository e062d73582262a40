package jobs

// DefaultLogLines bounds how many progress lines a slot keeps.
const DefaultLogLines = 200

// LogRing keeps the most recent progress lines of a job.
type LogRing struct {
	lines []string
	start int
	size  int
}

func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = DefaultLogLines
	}
	return &LogRing{lines: make([]string, capacity)}
}

// Append adds line, dropping the oldest line when full.
func (r *LogRing) Append(line string) {
	if r.size < len(r.lines) {
		r.lines[(r.start+r.size)%len(r.lines)] = line
		r.size++
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % len(r.lines)
}

// Lines returns the kept lines, oldest first.
func (r *LogRing) Lines() []string {
	out := make([]string, r.size)
	for i := range out {
		out[i] = r.lines[(r.start+i)%len(r.lines)]
	}
	return out
}

func (r *LogRing) Len() int {
	return r.size
}

func (r *LogRing) Reset() {
	r.start, r.size = 0, 0
}
