package move

// ClaimSet tracks destination basenames reserved during a batch before the
// filesystem reflects them. Dry runs rely on it exclusively, live runs use it
// to keep two in-batch moves from racing to the same free name.
type ClaimSet map[string]struct{}

// NewClaimSet returns an empty claim set.
func NewClaimSet() ClaimSet {
	return make(ClaimSet)
}

// Claim reserves a basename.
func (c ClaimSet) Claim(name string) {
	c[name] = struct{}{}
}

// Claimed reports whether a basename is already reserved.
func (c ClaimSet) Claimed(name string) bool {
	_, ok := c[name]
	return ok
}
