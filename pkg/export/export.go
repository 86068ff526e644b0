// Package export writes a decoded Mesh to an interchange format.
// Mesh export proper is delegated to an external mesh-writer capability;
// this package provides the Exporter seam the CLI calls through, plus
// one minimal concrete ASCII STL writer so that seam has a real
// implementation rather than standing empty.
package export

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"dcmesh/pkg/types"
)

// Exporter writes a Mesh to w in some interchange format.
type Exporter interface {
	Export(w io.Writer, mesh *types.Mesh) error
}

// ForFormat resolves a format name ("stl", "ply", "obj") to an
// Exporter. Only "stl" has a concrete implementation here; "ply" and
// "obj" return an error naming them as delegated externally.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "stl":
		return STLWriter{}, nil
	case "ply", "obj":
		return nil, fmt.Errorf("export: format %q is delegated to an external mesh-writer", format)
	default:
		return nil, fmt.Errorf("export: unknown format %q", format)
	}
}

// STLWriter writes a Mesh as ASCII STL.
type STLWriter struct{}

func (STLWriter) Export(w io.Writer, mesh *types.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "solid dcmesh")
	for _, t := range mesh.Triangles {
		if int(t.A) >= len(mesh.Vertices) || int(t.B) >= len(mesh.Vertices) || int(t.C) >= len(mesh.Vertices) {
			continue
		}
		a, b, c := mesh.Vertices[t.A], mesh.Vertices[t.B], mesh.Vertices[t.C]
		nx, ny, nz := faceNormal(a, b, c)
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", nx, ny, nz)
		fmt.Fprintln(bw, "    outer loop")
		fmt.Fprintf(bw, "      vertex %g %g %g\n", a.X, a.Y, a.Z)
		fmt.Fprintf(bw, "      vertex %g %g %g\n", b.X, b.Y, b.Z)
		fmt.Fprintf(bw, "      vertex %g %g %g\n", c.X, c.Y, c.Z)
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintln(bw, "endsolid dcmesh")
	return bw.Flush()
}

// faceNormal computes an unnormalized-then-normalized cross product
// normal for (a,b,c); degenerate triangles yield (0,0,0).
func faceNormal(a, b, c types.Vertex) (float32, float32, float32) {
	ux, uy, uz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	vx, vy, vz := c.X-a.X, c.Y-a.Y, c.Z-a.Z
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	length := float32(math.Sqrt(float64(nx*nx + ny*ny + nz*nz)))
	if length == 0 {
		return 0, 0, 0
	}
	return nx / length, ny / length, nz / length
}
