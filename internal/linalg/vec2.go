package linalg

// Vec2 is a 2-D point: a pixel coordinate, a map coordinate, or a
// longitude/latitude pair depending on context.
type Vec2 struct {
	U, V float64
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.U + b.U, a.V + b.V} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.U - b.U, a.V - b.V} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.U * s, a.V * s} }
