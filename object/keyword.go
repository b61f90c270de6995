package object

// Correction represents one of the hardware-correction keywords: drift,
// emission, or focus. It is an opaque marker consumed by the host.
type Correction struct {
	base
	value string
}

func (c *Correction) Type() Type {
	return CORRECTION
}

func (c *Correction) Value() string {
	return c.value
}

func (c *Correction) Inspect() string {
	return c.value
}

// NewCorrection returns the Correction for a keyword lexeme.
func NewCorrection(value string) *Correction {
	return &Correction{value: value}
}

// Algorithm represents one of the distance-algorithm keywords:
// Manhattan, Euclidean, or Minkowski.
type Algorithm struct {
	base
	value string
}

func (a *Algorithm) Type() Type {
	return ALGORITHM
}

func (a *Algorithm) Value() string {
	return a.value
}

func (a *Algorithm) Inspect() string {
	return a.value
}

// NewAlgorithm returns the Algorithm for a keyword lexeme.
func NewAlgorithm(value string) *Algorithm {
	return &Algorithm{value: value}
}
