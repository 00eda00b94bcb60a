package llmprovider

import "testing"

func TestParseProviderID(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderID
		wantErr bool
	}{
		{"openai", ProviderOpenAI, false},
		{" Azure ", ProviderAzure, false},
		{"LOREM", ProviderLorem, false},
		{"anthropic", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProviderID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProviderID_IsValid(t *testing.T) {
	for _, id := range KnownProviders {
		if !id.IsValid() {
			t.Errorf("%s should be valid", id)
		}
	}
	if ProviderID("openrouter").IsValid() {
		t.Error("openrouter should not be valid")
	}
}
