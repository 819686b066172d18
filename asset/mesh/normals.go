package mesh

import "github.com/giuliom95/baker2/types"

// Replace the mesh normals with smooth per-vertex normals. The normal of a
// vertex is the normalized, unweighted sum of the face normals of all
// triangles that reference its position. Every corner's normal index is set to
// its position index.
func GenerateVertexNormals(m *Mesh) {
	normals := make([]types.Vec3, len(m.Positions))

	for ti := 0; ti < m.NumTriangles(); ti++ {
		c := m.Corners[3*ti : 3*ti+3]
		p0 := m.Positions[c[0].Position]
		p1 := m.Positions[c[1].Position]
		p2 := m.Positions[c[2].Position]
		faceNormal := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()

		for vi := range c {
			c[vi].Normal = c[vi].Position
			normals[c[vi].Position] = normals[c[vi].Position].Add(faceNormal)
		}
	}

	for index := range normals {
		normals[index] = normals[index].Normalize()
	}

	m.Normals = normals
	m.NormalsGenerated = true
}
