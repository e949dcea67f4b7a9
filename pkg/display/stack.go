package display

// push returns a new slice with d appended and the oldest entries evicted
// until len <= max. The input slice is never modified.
func push(stack []Descriptor, d Descriptor, max int) []Descriptor {
	next := make([]Descriptor, 0, len(stack)+1)
	next = append(next, stack...)
	next = append(next, d)
	return trim(next, max)
}

// trim keeps the max most recent entries, preserving their order.
func trim(stack []Descriptor, max int) []Descriptor {
	if max < 1 {
		max = 1
	}
	if len(stack) <= max {
		return stack
	}
	out := make([]Descriptor, max)
	copy(out, stack[len(stack)-max:])
	return out
}

// replaceLast returns a copy of stack whose last entry is d.
func replaceLast(stack []Descriptor, d Descriptor) []Descriptor {
	out := make([]Descriptor, len(stack))
	copy(out, stack)
	out[len(out)-1] = d
	return out
}
