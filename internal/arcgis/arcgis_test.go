package arcgis

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestQueryURL(t *testing.T) {
	u := QueryURL()
	if !strings.HasPrefix(u, FeatureServiceURL+"?") {
		t.Fatalf("unexpected base: %s", u)
	}
	for _, want := range []string{
		"f=geojson",
		"outSR=4326",
		"where=1%3D1",
		"outFields=District%2CDistrictName%2CBoard_Members",
	} {
		if !strings.Contains(u, want) {
			t.Errorf("query URL missing %s: %s", want, u)
		}
	}
}

func testFeatureCollection(t *testing.T, districtNumbers []int) []byte {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for i, num := range districtNumbers {
		f := geojson.NewFeature(orb.Polygon{{
			{float64(i), 0}, {float64(i) + 1, 0}, {float64(i) + 1, 1}, {float64(i), 1}, {float64(i), 0},
		}})
		f.Properties["District"] = float64(num)
		f.Properties["DistrictName"] = "District " + string(rune('0'+num))
		f.Properties["Board_Members"] = "1"
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestParseDistrictsDropsUnmapped(t *testing.T) {
	// District 9 has no geo_id mapping and must be dropped, not fail the run.
	data := testFeatureCollection(t, []int{1, 2, 3, 4, 5, 6, 7, 0, 9})

	districts, dropped, err := ParseDistricts(data)
	if err != nil {
		t.Fatalf("ParseDistricts failed: %v", err)
	}
	if len(districts) != 8 {
		t.Fatalf("expected 8 districts, got %d", len(districts))
	}
	if len(dropped) != 1 || dropped[0] != 9 {
		t.Errorf("dropped = %v, want [9]", dropped)
	}
}

func TestParseDistrictsMapping(t *testing.T) {
	data := testFeatureCollection(t, []int{3, 0})

	districts, _, err := ParseDistricts(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(districts) != 2 {
		t.Fatalf("expected 2 districts, got %d", len(districts))
	}

	if districts[0].GeoID != "180063000003" {
		t.Errorf("district 3 geo_id = %s", districts[0].GeoID)
	}
	// RBBCSC seats all share the parent district's geo_id.
	if districts[1].GeoID != "1809480" {
		t.Errorf("district 0 geo_id = %s", districts[1].GeoID)
	}
	if districts[0].Name != "District 3" {
		t.Errorf("district 3 name = %q", districts[0].Name)
	}
	if _, ok := districts[0].Geometry.(orb.Polygon); !ok {
		t.Errorf("geometry type %T", districts[0].Geometry)
	}
}

func TestParseDistrictsBadPayload(t *testing.T) {
	if _, _, err := ParseDistricts([]byte(`<html>Service unavailable</html>`)); err == nil {
		t.Error("expected error for non-GeoJSON payload")
	}
}
