package board

const (
	MinScale     = 1.0
	MaxScale     = 6.0
	ScaleStep    = 0.5
	DefaultScale = 2.0
)

// Scale is the half-size of a hex. It is always kept inside [MinScale, MaxScale].
type Scale float64

// NewScale clamps s into range.
func NewScale(s float64) Scale {
	return Scale(s).Clamp()
}

// Clamp bounds the scale to [MinScale, MaxScale].
func (s Scale) Clamp() Scale {
	switch {
	case s < MinScale:
		return MinScale
	case s > MaxScale:
		return MaxScale
	default:
		return s
	}
}

func (s Scale) ZoomIn() Scale  { return (s + ScaleStep).Clamp() }
func (s Scale) ZoomOut() Scale { return (s - ScaleStep).Clamp() }

func (s Scale) Float() float64 { return float64(s) }
