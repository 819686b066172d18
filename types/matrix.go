package types

import "golang.org/x/image/math/f32"

// Matrices are stored in row-major order.
type Mat2 [4]float32
type Mat3 f32.Mat3

// Create a 3x3 matrix whose columns are the supplied vectors.
func Mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{
		c0[0], c1[0], c2[0],
		c0[1], c1[1], c2[1],
		c0[2], c1[2], c2[2],
	}
}

// Get matrix column.
func (m Mat3) Col(index int) Vec3 {
	return Vec3{m[index], m[3+index], m[6+index]}
}

// Transpose matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Multiply matrix with a column vector.
func (m Mat3) Mul3x1(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Get matrix determinant.
func (m Mat2) Det() float32 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert matrix. The second return value is false if the matrix is singular.
func (m Mat2) Inv() (Mat2, bool) {
	det := m.Det()
	if det == 0 {
		return Mat2{}, false
	}
	inv := 1.0 / det
	return Mat2{
		m[3] * inv, -m[1] * inv,
		-m[2] * inv, m[0] * inv,
	}, true
}

// Multiply matrix with a column vector.
func (m Mat2) Mul2x1(v Vec2) Vec2 {
	return Vec2{
		m[0]*v[0] + m[1]*v[1],
		m[2]*v[0] + m[3]*v[1],
	}
}
