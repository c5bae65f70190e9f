package geom

import "math"

// Epsilon is the tolerance used for every numerical existence and coincidence test.
const Epsilon = 1e-7

// Vector3 is a vector in R³. Points on the sphere are unit vectors.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V3 creates a vector.
func V3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Mul(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }
func (v Vector3) Negate() Vector3       { return Vector3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of two vectors.
func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean norm.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector in the direction of v, or the zero vector
// when v is (numerically) zero.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l < Epsilon*Epsilon {
		return Vector3{}
	}
	return v.Mul(1 / l)
}

// IsZero reports whether every component is within tol of zero.
func (v Vector3) IsZero(tol float64) bool {
	return math.Abs(v.X) < tol && math.Abs(v.Y) < tol && math.Abs(v.Z) < tol
}

// ApproxEqual reports whether v and o agree within tol componentwise.
func (v Vector3) ApproxEqual(o Vector3, tol float64) bool {
	return v.Sub(o).IsZero(tol)
}

// IsUnit reports whether v has norm one within tol.
func (v Vector3) IsUnit(tol float64) bool {
	return math.Abs(v.Length()-1) < tol
}

// Angle returns the angle between v and o in [0, π]. It is stable for nearly
// parallel vectors, unlike acos of the dot product.
func (v Vector3) Angle(o Vector3) float64 {
	return math.Atan2(v.Cross(o).Length(), v.Dot(o))
}

// Perpendicular returns some unit vector orthogonal to v.
func (v Vector3) Perpendicular() Vector3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	var other Vector3
	switch {
	case ax <= ay && ax <= az:
		other = V3(1, 0, 0)
	case ay <= az:
		other = V3(0, 1, 0)
	default:
		other = V3(0, 0, 1)
	}
	return v.Cross(other).Normalize()
}
