package llmprovider

import (
	"errors"
	"reflect"
	"testing"
)

func TestSecureParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    any
		wantErr bool
	}{
		{name: "object", input: `{"a":1,"b":[true,null]}`, want: map[string]any{"a": float64(1), "b": []any{true, nil}}},
		{name: "string", input: `"hi"`, want: "hi"},
		{name: "number", input: `3.5`, want: 3.5},
		{name: "truncated", input: `{"a":`, wantErr: true},
		{name: "trailing comma", input: `{"a":1,}`, wantErr: true},
		{name: "proto key", input: `{"__proto__":{"x":1}}`, wantErr: true},
		{name: "nested proto key", input: `{"a":[{"b":{"__proto__":1}}]}`, wantErr: true},
		{name: "constructor prototype", input: `{"constructor":{"prototype":{}}}`, wantErr: true},
		{name: "constructor string is fine", input: `{"constructor":"x"}`, want: map[string]any{"constructor": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SecureParseJSON(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SecureParseJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SecureParseJSON() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseToolArguments(t *testing.T) {
	empty, err := ParseToolArguments("call_1", "f", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m, ok := empty.(map[string]any); !ok || len(m) != 0 {
		t.Errorf("empty arguments = %#v, want empty object", empty)
	}

	_, err = ParseToolArguments("call_2", "get_weather", `{"city":`)
	var parseErr *OutputParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected OutputParseError, got %v", err)
	}
	if parseErr.ToolCallID != "call_2" || parseErr.ToolName != "get_weather" || parseErr.Text != `{"city":` {
		t.Errorf("unexpected error fields: %+v", parseErr)
	}
	if !errors.Is(err, ErrOutputParse) {
		t.Error("OutputParseError should match ErrOutputParse")
	}
}
