// Package decoder implements the orchestrator (C8): it drives the
// document reader into the vertex pipeline and facet interpreter and
// assembles the resulting Mesh, attaching diagnostics rather than ever
// aborting on malformed input.
package decoder

import (
	"fmt"

	"dcmesh/pkg/b64"
	"dcmesh/pkg/document"
	"dcmesh/pkg/facet"
	"dcmesh/pkg/types"
	"dcmesh/pkg/vertexpipe"
)

// Decode parses an XML document's bytes into a Mesh. It never returns a
// non-nil error for data-quality problems; those are attached to the
// Mesh as diagnostics. An error is only returned for conditions outside
// the document itself (none exist today, but the signature mirrors the
// rest of the pipeline's (value, error) convention for future-proofing
// against non-data failures).
func Decode(xmlData []byte, opts types.Options) (*types.Mesh, error) {
	view, diags := document.Parse(xmlData)
	mesh := &types.Mesh{Diagnostics: diags}

	if !view.HasBinaryData {
		return mesh, nil
	}

	vr, err := vertexpipe.Decode(view.VerticesBlob, view.Schema, view.Properties, view.VerticesMeta, opts)
	if err != nil {
		return nil, fmt.Errorf("decoder: vertex pipeline: %w", err)
	}
	mesh.Vertices = vr.Vertices
	mesh.Verified = vr.Verified
	mesh.Diagnostics = append(mesh.Diagnostics, vr.Diagnostics...)

	facetsRaw, err := b64.Decode(view.FacetsBlob)
	if err != nil {
		mesh.AddDiagnostic(types.Base64Error, fmt.Sprintf("facets: %v", err))
		return mesh, nil
	}

	triangles, facetDiags := facet.Interpret(facetsRaw, uint32(len(mesh.Vertices)), opts)
	mesh.Triangles = triangles
	mesh.Diagnostics = append(mesh.Diagnostics, facetDiags...)

	// facet.Interpret skips its index check for a vertex count of 0, so
	// triangles over an empty vertex list are flagged here.
	if len(mesh.Vertices) == 0 && len(mesh.Triangles) > 0 {
		mesh.AddDiagnostic(types.IndexOutOfRange, fmt.Sprintf(
			"decoder: %d triangles reference vertices but none were decoded", len(mesh.Triangles)))
	}

	if view.FacetsMeta.Count != 0 && uint32(len(mesh.Triangles)) != view.FacetsMeta.Count {
		mesh.AddDiagnostic(types.FacetStreamTruncated, fmt.Sprintf(
			"decoder: emitted %d triangles, expected %d", len(mesh.Triangles), view.FacetsMeta.Count))
	}

	return mesh, nil
}

