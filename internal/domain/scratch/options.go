// Package scratch tracks an obscuring overlay over a fixed-size surface.
package scratch

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithRadius sets the radius of the disk uncovered per scratch sample.
func WithRadius(radius int) Option {
	return func(d *Detector) {
		if radius > 0 {
			d.radius = radius
		}
	}
}

// WithThreshold sets the coverage percentage past which the reveal fires.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold < 100 {
			d.threshold = threshold
		}
	}
}

// WithRevealFunc sets the callback fired exactly once when the threshold
// is crossed.
func WithRevealFunc(fn func()) Option {
	return func(d *Detector) {
		d.onReveal = fn
	}
}
