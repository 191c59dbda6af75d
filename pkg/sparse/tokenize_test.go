package sparse

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple",
			text: "Apples are sweet",
			want: []string{"apples", "are", "sweet"},
		},
		{
			name: "punctuation separates",
			text: "red, fruit! (really)",
			want: []string{"red", "fruit", "really"},
		},
		{
			name: "digits and underscore",
			text: "token_1 and TOKEN_2",
			want: []string{"token_1", "and", "token_2"},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "only separators",
			text: "  ... !!! ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
