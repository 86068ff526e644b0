package document

import (
	"testing"

	"dcmesh/pkg/types"
)

const sampleXML = `<HPS version="1.0">
  <Packed_geometry>
    <Schema>CE</Schema>
    <Properties>
      <Property name="EKID" value="3"/>
      <Property name="PackageLockList" value="a;b;c"/>
    </Properties>
    <Binary_data value="x">
      <Vertices vertex_count="3" base64_encoded_bytes="48" check_value="123">QUJD</Vertices>
      <Facets facet_count="1" base64_encoded_bytes="4">BAU=</Facets>
    </Binary_data>
  </Packed_geometry>
</HPS>`

func TestParseWellFormedDocument(t *testing.T) {
	view, diags := Parse([]byte(sampleXML))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if view.HPSVersion != "1.0" {
		t.Fatalf("HPSVersion = %q, want 1.0", view.HPSVersion)
	}
	if view.Schema != "CE" {
		t.Fatalf("Schema = %q, want CE", view.Schema)
	}
	if view.Properties["EKID"] != "3" {
		t.Fatalf("Properties[EKID] = %q, want 3", view.Properties["EKID"])
	}
	if view.VerticesMeta.Count != 3 {
		t.Fatalf("VerticesMeta.Count = %d, want 3", view.VerticesMeta.Count)
	}
	if view.VerticesMeta.CheckValue == nil || *view.VerticesMeta.CheckValue != 123 {
		t.Fatalf("VerticesMeta.CheckValue = %v, want 123", view.VerticesMeta.CheckValue)
	}
	if view.FacetsMeta.Count != 1 {
		t.Fatalf("FacetsMeta.Count = %d, want 1", view.FacetsMeta.Count)
	}
	if view.VerticesBlob != "QUJD" {
		t.Fatalf("VerticesBlob = %q, want QUJD", view.VerticesBlob)
	}
}

func TestParseMissingBinaryData(t *testing.T) {
	xmlDoc := `<HPS version="1.0"><Packed_geometry><Schema>plain</Schema></Packed_geometry></HPS>`
	view, diags := Parse([]byte(xmlDoc))
	if view.HasBinaryData {
		t.Fatal("expected HasBinaryData = false")
	}
	found := false
	for _, d := range diags {
		if d.Code == types.NoGeometry {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a NoGeometry diagnostic, got %+v", diags)
	}
}

func TestParseMalformedXml(t *testing.T) {
	_, diags := Parse([]byte("<HPS><unterminated>"))
	if len(diags) != 1 || diags[0].Code != types.MalformedXml {
		t.Fatalf("expected a MalformedXml diagnostic, got %+v", diags)
	}
}

func TestParseMissingOptionalMetadataYieldsZero(t *testing.T) {
	xmlDoc := `<HPS version="1.0">
  <Packed_geometry>
    <Schema>plain</Schema>
    <Binary_data value="x">
      <Vertices>QUJD</Vertices>
    </Binary_data>
  </Packed_geometry>
</HPS>`
	view, diags := Parse([]byte(xmlDoc))
	if view.VerticesMeta.Count != 0 {
		t.Fatalf("VerticesMeta.Count = %d, want 0", view.VerticesMeta.Count)
	}
	if view.VerticesMeta.CheckValue != nil {
		t.Fatal("expected no CheckValue")
	}
	foundMissingFacets := false
	for _, d := range diags {
		if d.Code == types.MissingMetadata {
			foundMissingFacets = true
		}
	}
	if !foundMissingFacets {
		t.Fatalf("expected MissingMetadata diagnostics, got %+v", diags)
	}
}
