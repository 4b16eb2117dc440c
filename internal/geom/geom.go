// Package geom holds the vector, matrix and epsilon types shared by every
// pass of the pipeline, from the SCAD lowering down to the triangulator.
package geom

import "math"

// Vec2 is a point or direction in a layer's 2D plane.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a point or direction in model space.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vec2) Len() float64         { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64         { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Lerp2 linearly interpolates two 2D points at parameter t in [0,1].
func Lerp2(a, b Vec2, t float64) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Lerp3 linearly interpolates two points at parameter t in [0,1].
func Lerp3(a, b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Mat4 is a row-major 4x4 affine transform.
type Mat4 [4][4]float64

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul multiplies m by n, returning m*n (apply n first, then m).
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * n[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Apply transforms a point (w=1).
func (m Mat4) Apply(p Vec3) Vec3 {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w != 0 && w != 1 {
		x, y, z = x/w, y/w, z/w
	}
	return Vec3{x, y, z}
}

// ApplyDir transforms a direction (w=0, no translation).
func (m Mat4) ApplyDir(p Vec3) Vec3 {
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z,
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z,
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z,
	}
}

func Translate(v Vec3) Mat4 {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = v.X, v.Y, v.Z
	return m
}

func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = v.X, v.Y, v.Z
	return m
}

// RotateDeg builds a rotation matrix from Euler angles in degrees, applied
// in X, then Y, then Z order, matching the modelling language's rotate().
func RotateDeg(deg Vec3) Mat4 {
	rx := rotateX(deg.X * math.Pi / 180)
	ry := rotateY(deg.Y * math.Pi / 180)
	rz := rotateZ(deg.Z * math.Pi / 180)
	return rz.Mul(ry).Mul(rx)
}

func rotateX(r float64) Mat4 {
	m := Identity()
	c, s := math.Cos(r), math.Sin(r)
	m[1][1], m[1][2] = c, -s
	m[2][1], m[2][2] = s, c
	return m
}

func rotateY(r float64) Mat4 {
	m := Identity()
	c, s := math.Cos(r), math.Sin(r)
	m[0][0], m[0][2] = c, s
	m[2][0], m[2][2] = -s, c
	return m
}

func rotateZ(r float64) Mat4 {
	m := Identity()
	c, s := math.Cos(r), math.Sin(r)
	m[0][0], m[0][1] = c, -s
	m[1][0], m[1][1] = s, c
	return m
}

func MirrorPlane(n Vec3) Mat4 {
	l := n.Len()
	if l == 0 {
		return Identity()
	}
	n = n.Scale(1 / l)
	m := Identity()
	m[0][0] = 1 - 2*n.X*n.X
	m[0][1] = -2 * n.X * n.Y
	m[0][2] = -2 * n.X * n.Z
	m[1][0] = -2 * n.Y * n.X
	m[1][1] = 1 - 2*n.Y*n.Y
	m[1][2] = -2 * n.Y * n.Z
	m[2][0] = -2 * n.Z * n.X
	m[2][1] = -2 * n.Z * n.Y
	m[2][2] = 1 - 2*n.Z*n.Z
	return m
}

// Epsilons holds the three process-wide numeric tolerances. It is built
// once by internal/config and passed by value (it is tiny and immutable)
// through every geometric function from here on.
type Epsilons struct {
	Pt  float64 // point-rasterisation grid step
	Eq  float64 // general equality, <= Pt
	Sqr float64 // squared-quantity equality, <= Eq
}

// Snap rounds a coordinate to the point-rasterisation grid.
func (e Epsilons) Snap(v float64) float64 {
	if e.Pt <= 0 {
		return v
	}
	return math.Round(v/e.Pt) * e.Pt
}

// SnapVec2 snaps both coordinates of p to the grid.
func (e Epsilons) SnapVec2(p Vec2) Vec2 {
	return Vec2{e.Snap(p.X), e.Snap(p.Y)}
}

// EqualVec2 reports whether two points are within Eq in each coordinate.
func (e Epsilons) EqualVec2(a, b Vec2) bool {
	return math.Abs(a.X-b.X) <= e.Eq && math.Abs(a.Y-b.Y) <= e.Eq
}

// EqualScalar reports whether two scalars are within Eq.
func (e Epsilons) EqualScalar(a, b float64) bool {
	return math.Abs(a-b) <= e.Eq
}

// EqualSqr reports whether two squared-magnitude quantities are within Sqr.
func (e Epsilons) EqualSqr(a, b float64) bool {
	return math.Abs(a-b) <= e.Sqr
}
