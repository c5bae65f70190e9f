package geom

import "math"

// Matrix3 is a 3×3 matrix in row-major order:
// | m0 m1 m2 |
// | m3 m4 m5 |
// | m6 m7 m8 |
type Matrix3 [9]float64

// Identity returns the identity matrix.
func Identity() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// RotateAxis returns the rotation by angle radians about the given axis
// (right-handed). The axis need not be normalized.
func RotateAxis(axis Vector3, angle float64) Matrix3 {
	a := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Matrix3{
		t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y,
		t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X,
		t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c,
	}
}

// RotateBetween returns the rotation taking unit vector from to unit vector to
// along the great circle joining them.
func RotateBetween(from, to Vector3) Matrix3 {
	axis := from.Cross(to)
	if axis.IsZero(Epsilon) {
		if from.Dot(to) > 0 {
			return Identity()
		}
		return RotateAxis(from.Perpendicular(), math.Pi)
	}
	return RotateAxis(axis, from.Angle(to))
}

// Reflect returns the reflection across the plane with the given normal.
func Reflect(normal Vector3) Matrix3 {
	n := normal.Normalize()
	return Matrix3{
		1 - 2*n.X*n.X, -2 * n.X * n.Y, -2 * n.X * n.Z,
		-2 * n.X * n.Y, 1 - 2*n.Y*n.Y, -2 * n.Y * n.Z,
		-2 * n.X * n.Z, -2 * n.Y * n.Z, 1 - 2*n.Z*n.Z,
	}
}

// Multiply returns m * o, which applies o first, then m.
func (m Matrix3) Multiply(o Matrix3) Matrix3 {
	var r Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[3*i+j] = m[3*i]*o[j] + m[3*i+1]*o[3+j] + m[3*i+2]*o[6+j]
		}
	}
	return r
}

// Apply transforms a vector.
func (m Matrix3) Apply(v Vector3) Vector3 {
	return Vector3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transpose, which is the inverse for rotations.
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]}
}

// IsIdentity reports whether m is the identity within tol.
func (m Matrix3) IsIdentity(tol float64) bool {
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > tol {
			return false
		}
	}
	return true
}

// ToSlice returns the matrix as a slice for serialization.
func (m Matrix3) ToSlice() []float64 {
	return m[:]
}
