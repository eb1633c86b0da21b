package upstream

import (
	"testing"
)

// ============================================================================
// Query Parsing
// ============================================================================

func TestParseQuery_PreservesOrder(t *testing.T) {
	params := ParseQuery("zebra=1&alpha=2&mike=3")

	want := []Param{{"zebra", "1"}, {"alpha", "2"}, {"mike", "3"}}
	if len(params) != len(want) {
		t.Fatalf("ParseQuery returned %d params, want %d", len(params), len(want))
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("params[%d] = %+v, want %+v", i, params[i], want[i])
		}
	}
}

func TestParseQuery_FiltersReservedPathParam(t *testing.T) {
	params := ParseQuery("service=WMS&path=arcgis%2Frest&request=GetMap")

	if len(params) != 2 {
		t.Fatalf("ParseQuery returned %d params, want 2", len(params))
	}
	for _, p := range params {
		if p.Key == ReservedPathParam {
			t.Errorf("Reserved parameter %q must not be forwarded", ReservedPathParam)
		}
	}
}

func TestParseQuery_DecodesEscapes(t *testing.T) {
	params := ParseQuery("bbox=-124.5%2C32.5&name=half%20moon")

	if params[0].Value != "-124.5,32.5" {
		t.Errorf("bbox = %q, want decoded comma", params[0].Value)
	}
	if params[1].Value != "half moon" {
		t.Errorf("name = %q, want decoded space", params[1].Value)
	}
}

func TestParseQuery_KeepsMalformedEscapes(t *testing.T) {
	// A stray % must not drop the parameter.
	params := ParseQuery("q=100%&x=1")

	if len(params) != 2 {
		t.Fatalf("ParseQuery returned %d params, want 2", len(params))
	}
	if params[0].Value != "100%" {
		t.Errorf("q = %q, want raw token preserved", params[0].Value)
	}
}

func TestParseQuery_Empty(t *testing.T) {
	if params := ParseQuery(""); params != nil {
		t.Errorf("ParseQuery(\"\") = %v, want nil", params)
	}
}

func TestPathValue(t *testing.T) {
	tests := []struct {
		rawQuery string
		want     string
	}{
		{"path=arcgis%2Frest%2Fservices", "arcgis/rest/services"},
		{"service=WMS&path=layers", "layers"},
		{"service=WMS", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := PathValue(tt.rawQuery); got != tt.want {
			t.Errorf("PathValue(%q) = %q, want %q", tt.rawQuery, got, tt.want)
		}
	}
}

// ============================================================================
// URL Construction
// ============================================================================

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		path   string
		params []Param
		want   string
	}{
		{
			name:   "no params",
			origin: "https://nowcoast.noaa.gov",
			path:   "/arcgis/rest/services",
			want:   "https://nowcoast.noaa.gov/arcgis/rest/services",
		},
		{
			name:   "params joined in order",
			origin: "https://aviationweather.gov",
			path:   "/api/data/metar",
			params: []Param{{"ids", "KSFO"}, {"format", "json"}},
			want:   "https://aviationweather.gov/api/data/metar?ids=KSFO&format=json",
		},
		{
			name:   "values are percent encoded",
			origin: "https://nowcoast.noaa.gov",
			path:   "/export",
			params: []Param{{"bbox", "-124.5,32.5"}, {"f", "image"}},
			want:   "https://nowcoast.noaa.gov/export?bbox=-124.5%2C32.5&f=image",
		},
		{
			name:   "path without leading slash",
			origin: "https://www.ndbc.noaa.gov",
			path:   "data/realtime2/46042.txt",
			want:   "https://www.ndbc.noaa.gov/data/realtime2/46042.txt",
		},
		{
			name:   "existing query string switches to ampersand",
			origin: "https://nowcoast.noaa.gov",
			path:   "/export?f=image",
			params: []Param{{"bbox", "1,2"}},
			want:   "https://nowcoast.noaa.gov/export?f=image&bbox=1%2C2",
		},
		{
			name:   "fixed lightning suffix with OGC params",
			origin: "https://nowcoast.noaa.gov",
			path:   "/geoserver/observations/lightning_detection/ows",
			params: []Param{{"service", "WMS"}, {"request", "GetCapabilities"}},
			want:   "https://nowcoast.noaa.gov/geoserver/observations/lightning_detection/ows?service=WMS&request=GetCapabilities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(tt.origin, tt.path, tt.params); got != tt.want {
				t.Errorf("BuildURL = %q\nwant      %q", got, tt.want)
			}
		})
	}
}
