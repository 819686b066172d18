package mesh

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the mesh attribute counts.
func (m *Mesh) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Attribute", "Count"})
	table.Append([]string{"Positions", fmt.Sprintf("%d", len(m.Positions))})
	table.Append([]string{"Normals", fmt.Sprintf("%d", len(m.Normals))})
	table.Append([]string{"UVs", fmt.Sprintf("%d", len(m.UVs))})
	table.Append([]string{"Corners", fmt.Sprintf("%d", len(m.Corners))})

	if len(m.Positions) != 0 {
		bbox := m.BBox()
		table.SetFooter([]string{
			fmt.Sprintf("%d triangles", m.NumTriangles()),
			fmt.Sprintf("bbox %v - %v", bbox[0], bbox[1]),
		})
	} else {
		table.SetFooter([]string{fmt.Sprintf("%d triangles", m.NumTriangles()), " "})
	}

	table.Render()
	return buf.String()
}
