package testutil

import (
	"reflect"
	"testing"
)

func TestJS(t *testing.T) {
	type entry struct {
		Direction string
		Text      string
	}

	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "simple struct",
			arg:  entry{"sent", "look"},
			want: `{"Direction":"sent","Text":"look"}`,
		},
		{
			name: "map",
			arg:  map[string]interface{}{"ok": true},
			want: `{"ok":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JS(tt.arg); got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "valid JSON string",
			arg:  `{"cmd":"look","n":3}`,
			want: map[string]interface{}{"cmd": "look", "n": float64(3)},
		},
		{
			name: "valid JSON bytes",
			arg:  []byte(`["a","b"]`),
			want: []interface{}{"a", "b"},
		},
		{
			name: "non-string, non-byte-slice type",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}
