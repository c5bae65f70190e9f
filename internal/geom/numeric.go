package geom

import "math"

var invPhi = (math.Sqrt(5) - 1) / 2

// GoldenMin returns the minimizer of a unimodal f on [a, b] to within tol.
func GoldenMin(f func(float64) float64, a, b, tol float64) float64 {
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < 200 && math.Abs(b-a) > tol; i++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = f(d)
		}
	}
	return (a + b) / 2
}

// Bisect returns a root of f in [a, b], given that f(a) and f(b) have
// opposite signs.
func Bisect(f func(float64) float64, a, b, tol float64) float64 {
	fa := f(a)
	for i := 0; i < 200 && b-a > tol; i++ {
		m := (a + b) / 2
		fm := f(m)
		if fm == 0 {
			return m
		}
		if (fm < 0) == (fa < 0) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return (a + b) / 2
}

// Roots brackets the sign changes of f over n equal subintervals of [lo, hi]
// and refines each by bisection. Roots are returned in increasing order. A
// sample that is exactly zero counts once.
func Roots(f func(float64) float64, lo, hi float64, n int) []float64 {
	var out []float64
	step := (hi - lo) / float64(n)
	prevT, prevV := lo, f(lo)
	if prevV == 0 {
		out = append(out, lo)
	}
	for i := 1; i <= n; i++ {
		t := lo + step*float64(i)
		v := f(t)
		switch {
		case v == 0:
			out = append(out, t)
		case prevV != 0 && (v < 0) != (prevV < 0):
			out = append(out, Bisect(f, prevT, t, 1e-13))
		}
		prevT, prevV = t, v
	}
	return out
}
