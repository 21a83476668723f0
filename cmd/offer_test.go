package cmd

import "testing"

func TestParsePriceSpecs(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "keeps the literal price text",
			specs: []string{"Widget=12.5", "Gadget=7"},
			want:  map[string]string{"Widget": "12.5", "Gadget": "7"},
		},
		{
			name:  "names with spaces",
			specs: []string{"Steel Rods=99.99"},
			want:  map[string]string{"Steel Rods": "99.99"},
		},
		{
			name:  "trailing zeros preserved",
			specs: []string{"Widget=12.50"},
			want:  map[string]string{"Widget": "12.50"},
		},
		{name: "no specs", specs: nil, wantErr: true},
		{name: "missing separator", specs: []string{"Widget 12"}, wantErr: true},
		{name: "non-numeric price", specs: []string{"Widget=cheap"}, wantErr: true},
		{name: "empty name", specs: []string{"=5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePriceSpecs(tt.specs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePriceSpecs(%v) = %v, want error", tt.specs, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePriceSpecs(%v) error: %v", tt.specs, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parsed %d prices, want %d", len(got), len(tt.want))
			}
			for name, value := range tt.want {
				if got[name] != value {
					t.Errorf("price for %q = %q, want %q", name, got[name], value)
				}
			}
		})
	}
}
