package monitoring

// DefaultFollowThreshold is the distance from the bottom, in rows, inside
// which the pane counts as "at the bottom". One row means only the last
// position counts, so a single step up stops auto-scroll.
const DefaultFollowThreshold = 1

// Follow is the auto-scroll policy. Only scroll events (Observe) and explicit
// toggles change it; new content never turns it back on.
type Follow struct {
	enabled   bool
	threshold int
}

// NewFollow returns an enabled policy. threshold <= 0 uses the default.
func NewFollow(threshold int) Follow {
	if threshold <= 0 {
		threshold = DefaultFollowThreshold
	}
	return Follow{enabled: true, threshold: threshold}
}

// Observe recomputes the flag from the viewport geometry after a scroll event:
// enabled iff |scrollHeight - clientHeight - scrollTop| < threshold.
func (f *Follow) Observe(scrollHeight, clientHeight, scrollTop int) bool {
	d := scrollHeight - clientHeight - scrollTop
	if d < 0 {
		d = -d
	}
	f.enabled = d < f.threshold
	return f.enabled
}

// Toggle flips the flag and returns the new value.
func (f *Follow) Toggle() bool {
	f.enabled = !f.enabled
	return f.enabled
}

// Enabled reports whether new content should scroll the pane to the bottom.
func (f Follow) Enabled() bool { return f.enabled }

// Threshold returns the proximity threshold in rows.
func (f Follow) Threshold() int { return f.threshold }
