package dynamo

import "math"

// Vec2 is a 2D vector with value semantics.
//
// Value-receiver methods are pure and return a new vector. The *InPlace
// variants mutate the receiver and return it so calls can be chained on
// the hot path without producing temporaries.
type Vec2 struct {
	X, Y float64
}

// Zero returns the zero vector.
func Zero() Vec2 { return Vec2{} }

// V2 is shorthand for Vec2{X: x, Y: y}.
func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Len2 returns the squared length, v·v.
func (v Vec2) Len2() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Unit returns v scaled to length one. A zero-length vector has no
// direction and yields ErrDegenerateVector.
func (v Vec2) Unit() (Vec2, error) {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return Vec2{}, ErrDegenerateVector
	}
	return Vec2{v.X / l, v.Y / l}, nil
}

// Rotate rotates v counter-clockwise by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	sin, cos := math.Sincos(theta)
	return Vec2{cos*v.X - sin*v.Y, sin*v.X + cos*v.Y}
}

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// IsFinite reports whether both components are neither NaN nor Inf.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Set copies o into v.
func (v *Vec2) Set(o Vec2) *Vec2 {
	v.X, v.Y = o.X, o.Y
	return v
}

func (v *Vec2) SetZero() *Vec2 {
	v.X, v.Y = 0, 0
	return v
}

func (v *Vec2) AddInPlace(o Vec2) *Vec2 {
	v.X += o.X
	v.Y += o.Y
	return v
}

// AddScaledInPlace adds o*s to v.
func (v *Vec2) AddScaledInPlace(o Vec2, s float64) *Vec2 {
	v.X += o.X * s
	v.Y += o.Y * s
	return v
}

func (v *Vec2) SubInPlace(o Vec2) *Vec2 {
	v.X -= o.X
	v.Y -= o.Y
	return v
}

func (v *Vec2) ScaleInPlace(s float64) *Vec2 {
	v.X *= s
	v.Y *= s
	return v
}

func (v *Vec2) MulInPlace(o Vec2) *Vec2 {
	v.X *= o.X
	v.Y *= o.Y
	return v
}

// NormalizeInPlace scales v to unit length. On a zero-length vector it
// returns ErrDegenerateVector and leaves v untouched.
func (v *Vec2) NormalizeInPlace() (*Vec2, error) {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return v, ErrDegenerateVector
	}
	v.X /= l
	v.Y /= l
	return v, nil
}

func (v *Vec2) RotateInPlace(theta float64) *Vec2 {
	sin, cos := math.Sincos(theta)
	x, y := v.X, v.Y
	v.X = cos*x - sin*y
	v.Y = sin*x + cos*y
	return v
}
