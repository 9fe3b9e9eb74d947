// Package scratch tracks an obscuring overlay over a fixed-size surface and
// converts scratch gestures into a coverage percentage.
package scratch

// Default detector configuration constants.
const (
	// DefaultRadius is the radius of the disk uncovered per scratch sample.
	DefaultRadius = 20

	// DefaultThreshold is the uncovered percentage past which a reveal fires.
	DefaultThreshold = 40.0

	fullCoverage = 100.0
)

// Detector accumulates uncovered area over a discretized grid mask.
//
// Uncovering is monotonic: a scratched cell never re-covers, and repeated
// scratches over the same cell do not increase coverage. Coverage() is an
// O(width*height) scan and is meant to run at gesture-end checkpoints, not
// per movement sample; EndStroke is that checkpoint.
//
// The detector is not safe for concurrent use; the session controller
// serializes access.
type Detector struct {
	width, height int
	radius        int
	threshold     float64

	mask      []bool // true = uncovered
	uncovered int    // running count of uncovered cells
	revealed  bool
	onReveal  func()
}

// New creates a detector for a width x height surface.
func New(width, height int, opts ...Option) *Detector {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	d := &Detector{
		width:     width,
		height:    height,
		radius:    DefaultRadius,
		threshold: DefaultThreshold,
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.mask = make([]bool, width*height)

	return d
}

// Scratch uncovers a fixed-radius disk around (x, y). Out-of-bounds parts of
// the disk are clipped. Input after a reveal is a no-op.
func (d *Detector) Scratch(x, y int) {
	if d.revealed {
		return
	}

	r := d.radius
	rr := r * r
	for dy := -r; dy <= r; dy++ {
		py := y + dy
		if py < 0 || py >= d.height {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > rr {
				continue
			}
			px := x + dx
			if px < 0 || px >= d.width {
				continue
			}
			idx := py*d.width + px
			if !d.mask[idx] {
				d.mask[idx] = true
				d.uncovered++
			}
		}
	}
}

// Coverage returns the uncovered fraction of the surface as a percentage in
// [0, 100]. Full scan of the mask; call at checkpoints only.
func (d *Detector) Coverage() float64 {
	total := len(d.mask)
	if total == 0 {
		return 0
	}

	count := 0
	for _, uncovered := range d.mask {
		if uncovered {
			count++
		}
	}
	return float64(count) / float64(total) * fullCoverage
}

// EndStroke evaluates coverage at the end of a scratch gesture. The first
// time coverage exceeds the threshold the reveal callback fires, the whole
// surface is cleared, and the detector stops accepting input. Returns the
// measured coverage and whether the detector has revealed.
func (d *Detector) EndStroke() (float64, bool) {
	if d.revealed {
		return fullCoverage, true
	}

	coverage := d.Coverage()
	if coverage > d.threshold {
		d.revealed = true
		d.clearAll()
		coverage = fullCoverage
		if d.onReveal != nil {
			d.onReveal()
		}
	}
	return coverage, d.revealed
}

// Revealed reports whether the reveal has fired.
func (d *Detector) Revealed() bool {
	return d.revealed
}

// clearAll uncovers the full surface. A partial overlay after a reveal looks
// broken, so the remainder is cleared programmatically.
func (d *Detector) clearAll() {
	for i := range d.mask {
		d.mask[i] = true
	}
	d.uncovered = len(d.mask)
}
