package permission

// Mask64 is a 64-bit permission set. The zero value grants nothing.
// Permissions only additively grant; there is no deny bit, so combining
// role masks is a plain union and needs no conflict resolution.
type Mask64 uint64

// Has reports whether bit is set.
func (m Mask64) Has(bit int) bool {
	if bit < 0 || bit >= 64 {
		return false
	}
	return (m & (1 << bit)) != 0
}

// Set returns a copy of m with bit set.
func (m Mask64) Set(bit int) Mask64 {
	if bit < 0 || bit >= 64 {
		return m
	}
	return m | (1 << bit)
}

// Union returns the combined grants of m and other.
func (m Mask64) Union(other Mask64) Mask64 {
	return m | other
}

// Empty reports whether the mask grants nothing.
func (m Mask64) Empty() bool {
	return m == 0
}

// Raw returns the underlying bits.
func (m Mask64) Raw() uint64 {
	return uint64(m)
}
