package pagination

// Limit bounds for a result page.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

// Params holds offset-based pagination parameters.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Clamp forces the parameters into their valid ranges. A zero limit means
// "not given" and becomes DefaultLimit.
func (p Params) Clamp() Params {
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < MinLimit:
		p.Limit = MinLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Window returns the half-open slice bounds [start, end) of the page
// described by params over a collection of total elements.
func Window(total int, params Params) (start, end int) {
	start = min(params.Offset, total)
	end = min(start+params.Limit, total)
	return start, end
}

// HasNext reports whether another page follows the current window.
// It never overflows, whatever the offset.
func HasNext(total int, params Params) bool {
	return params.Offset < total && params.Limit < total-params.Offset
}

// HasPrev reports whether the current window is preceded by another page.
func HasPrev(params Params) bool {
	return params.Offset > 0
}
