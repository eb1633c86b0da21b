package tracing

import (
	"strings"
	"testing"
)

// ============================================================
// Sampler construction
// ============================================================

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
		wantDesc string
	}{
		{"always", SamplerAlways, 0, false, "AlwaysOnSampler"},
		{"never", SamplerNever, 0, false, "AlwaysOffSampler"},
		{"ratio", SamplerRatio, 0.25, false, "TraceIDRatioBased"},
		{"ratio at zero", SamplerRatio, 0, false, "TraceIDRatioBased"},
		{"ratio at one", SamplerRatio, 1, false, "TraceIDRatioBased"},
		{"ratio below range", SamplerRatio, -0.1, true, ""},
		{"ratio above range", SamplerRatio, 1.1, true, ""},
		{"unknown strategy", "sometimes", 0, true, ""},
		{"empty strategy", "", 0, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("createSampler: %v", err)
			}

			// Every sampler respects an upstream parent's decision.
			desc := sampler.Description()
			if !strings.HasPrefix(desc, "ParentBased") {
				t.Errorf("sampler description %q should be parent-based", desc)
			}
			if !strings.Contains(desc, tt.wantDesc) {
				t.Errorf("sampler description %q missing %q", desc, tt.wantDesc)
			}
		})
	}
}
