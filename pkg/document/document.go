// Package document reads the container's XML envelope into a flat,
// typed DocumentView: the HPS version, schema, property map, and the
// two binary payloads with their metadata. Generic XML/DOM traversal is
// treated as a solved problem and delegated entirely to encoding/xml's
// struct-tag unmarshaling rather than walked by hand.
package document

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"dcmesh/pkg/types"
)

type hpsXML struct {
	Version        string        `xml:"version,attr"`
	PackedGeometry packedGeomXML `xml:"Packed_geometry"`
}

type packedGeomXML struct {
	Schema     string     `xml:"Schema"`
	Properties []propXML  `xml:"Properties>Property"`
	Binary     *binaryXML `xml:"Binary_data"`
}

type propXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type binaryXML struct {
	Vertices *geomBlobXML `xml:"Vertices"`
	Facets   *geomBlobXML `xml:"Facets"`
}

type geomBlobXML struct {
	VertexCount  string `xml:"vertex_count,attr"`
	FacetCount   string `xml:"facet_count,attr"`
	EncodedBytes string `xml:"base64_encoded_bytes,attr"`
	CheckValue   string `xml:"check_value,attr"`
	Text         string `xml:",chardata"`
}

// Parse reads an XML document and produces its DocumentView. Malformed
// XML and missing optional elements never return an error: they are
// surfaced as diagnostics on the returned view so the orchestrator can
// still answer with an empty mesh.
func Parse(data []byte) (types.DocumentView, []types.Diagnostic) {
	var diags []types.Diagnostic
	var doc hpsXML

	if err := xml.Unmarshal(data, &doc); err != nil {
		diags = append(diags, types.Diagnostic{
			Code:    types.MalformedXml,
			Message: fmt.Sprintf("document: %v", err),
		})
		return types.DocumentView{}, diags
	}

	view := types.DocumentView{
		HPSVersion: doc.Version,
		Schema:     doc.PackedGeometry.Schema,
		Properties: make(map[string]string, len(doc.PackedGeometry.Properties)),
	}
	for _, p := range doc.PackedGeometry.Properties {
		view.Properties[p.Name] = p.Value
	}

	bin := doc.PackedGeometry.Binary
	if bin == nil {
		diags = append(diags, types.Diagnostic{
			Code:    types.NoGeometry,
			Message: "document: no Binary_data element found",
		})
		return view, diags
	}
	view.HasBinaryData = true

	if bin.Vertices != nil {
		view.VerticesBlob = bin.Vertices.Text
		meta, d := parseVerticesMeta(bin.Vertices)
		view.VerticesMeta = meta
		diags = append(diags, d...)
	} else {
		diags = append(diags, types.Diagnostic{
			Code:    types.MissingMetadata,
			Message: "document: no Vertices element inside Binary_data",
		})
	}

	if bin.Facets != nil {
		view.FacetsBlob = bin.Facets.Text
		meta, d := parseFacetsMeta(bin.Facets)
		view.FacetsMeta = meta
		diags = append(diags, d...)
	} else {
		diags = append(diags, types.Diagnostic{
			Code:    types.MissingMetadata,
			Message: "document: no Facets element inside Binary_data",
		})
	}

	return view, diags
}

func parseVerticesMeta(b *geomBlobXML) (types.VerticesMeta, []types.Diagnostic) {
	var diags []types.Diagnostic
	var meta types.VerticesMeta

	count, err := parseUint32(b.VertexCount)
	if err != nil {
		diags = append(diags, missingMetadata("vertex_count", err))
	}
	meta.Count = count

	encoded, err := parseUint32(b.EncodedBytes)
	if err != nil {
		diags = append(diags, missingMetadata("base64_encoded_bytes", err))
	}
	meta.EncodedBytes = encoded

	if b.CheckValue != "" {
		cv, err := parseUint32(b.CheckValue)
		if err == nil {
			meta.CheckValue = &cv
		} else {
			diags = append(diags, missingMetadata("check_value", err))
		}
	}

	return meta, diags
}

func parseFacetsMeta(b *geomBlobXML) (types.FacetsMeta, []types.Diagnostic) {
	var diags []types.Diagnostic
	var meta types.FacetsMeta

	count, err := parseUint32(b.FacetCount)
	if err != nil {
		diags = append(diags, missingMetadata("facet_count", err))
	}
	meta.Count = count

	encoded, err := parseUint32(b.EncodedBytes)
	if err != nil {
		diags = append(diags, missingMetadata("base64_encoded_bytes", err))
	}
	meta.EncodedBytes = encoded

	return meta, diags
}

func parseUint32(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("attribute absent")
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func missingMetadata(attr string, err error) types.Diagnostic {
	return types.Diagnostic{
		Code:    types.MissingMetadata,
		Message: fmt.Sprintf("document: %s: %v, treating as zero", attr, err),
	}
}
