// Package matrix implements the 3x3 affine transform used to map raw
// device coordinates into the normalized [0,1] device space and back,
// mirroring libinput's struct matrix.
package matrix

// Matrix is a 3x3 affine transform, row-major, with an implicit bottom
// row of [0 0 1].
type Matrix struct {
	Val [3][3]float32
}

// Identity returns the identity matrix.
func Identity() Matrix {
	var m Matrix
	m.Val[0][0] = 1
	m.Val[1][1] = 1
	m.Val[2][2] = 1
	return m
}

// FromArray6 builds a matrix from the 6 row-major coefficients of the
// top two rows, as stored in libinput's CalibrationMatrix device
// property.
func FromArray6(values [6]float32) Matrix {
	m := Identity()
	m.Val[0][0] = values[0]
	m.Val[0][1] = values[1]
	m.Val[0][2] = values[2]
	m.Val[1][0] = values[3]
	m.Val[1][1] = values[4]
	m.Val[1][2] = values[5]
	return m
}

// Scale returns a matrix that scales x by sx and y by sy.
func Scale(sx, sy float32) Matrix {
	m := Identity()
	m.Val[0][0] = sx
	m.Val[1][1] = sy
	return m
}

// Translate returns a matrix that translates by (x, y).
func Translate(x, y float32) Matrix {
	m := Identity()
	m.Val[0][2] = x
	m.Val[1][2] = y
	return m
}

// IsIdentity reports whether m is the identity transform.
func (m Matrix) IsIdentity() bool {
	return m.Val[0][0] == 1 &&
		m.Val[0][1] == 0 &&
		m.Val[0][2] == 0 &&
		m.Val[1][0] == 0 &&
		m.Val[1][1] == 1 &&
		m.Val[1][2] == 0 &&
		m.Val[2][0] == 0 &&
		m.Val[2][1] == 0 &&
		m.Val[2][2] == 1
}

// Mult returns m1 * m2. Order matters: the result transforms a point
// by applying m2 first, then m1.
func Mult(m1, m2 Matrix) Matrix {
	var out Matrix
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var v float32
			for i := 0; i < 3; i++ {
				v += m1.Val[row][i] * m2.Val[i][col]
			}
			out.Val[row][col] = v
		}
	}
	return out
}

// MultVec applies m to the point (x, y) and returns the transformed
// point.
func (m Matrix) MultVec(x, y float64) (float64, float64) {
	tx := x*float64(m.Val[0][0]) + y*float64(m.Val[0][1]) + float64(m.Val[0][2])
	ty := x*float64(m.Val[1][0]) + y*float64(m.Val[1][1]) + float64(m.Val[1][2])
	return tx, ty
}

// ToArray6 returns the 6 row-major coefficients of the top two rows,
// the inverse of FromArray6.
func (m Matrix) ToArray6() [6]float32 {
	return [6]float32{
		m.Val[0][0], m.Val[0][1], m.Val[0][2],
		m.Val[1][0], m.Val[1][1], m.Val[1][2],
	}
}
