package rebalance

import (
	"strings"
	"testing"
)

func TestParseComposition(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]Quantity
	}{
		{
			name:  "simple",
			input: "stock:0.6;bond:0.4",
			want:  map[string]Quantity{"stock": Q(0.6), "bond": Q(0.4)},
		},
		{
			name:  "equal sign synonym",
			input: "stock=0.6;bond=0.4",
			want:  map[string]Quantity{"stock": Q(0.6), "bond": Q(0.4)},
		},
		{
			name:  "remainder goes to cash",
			input: "stock:0.7",
			want:  map[string]Quantity{"stock": Q(0.7), AssetCash: Q(0.3)},
		},
		{
			name:  "spaces and trailing separator",
			input: " stock : 0.5 ; bond : 0.5 ;",
			want:  map[string]Quantity{"stock": Q(0.5), "bond": Q(0.5)},
		},
		{
			name:  "repeated asset accumulates",
			input: "stock:0.3;stock:0.3;bond:0.4",
			want:  map[string]Quantity{"stock": Q(0.6), "bond": Q(0.4)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseComposition(tc.input)
			if err != nil {
				t.Fatalf("ParseComposition(%q): %v", tc.input, err)
			}
			if got.Len() != len(tc.want) {
				t.Fatalf("got %d assets, want %d: %s", got.Len(), len(tc.want), got)
			}
			for asset, want := range tc.want {
				if w, ok := got.Weight(asset); !ok || !w.Equal(want) {
					t.Errorf("weight(%q) = %s, want %s", asset, w, want)
				}
			}
		})
	}
}

func TestParseCompositionErrors(t *testing.T) {
	tests := []string{
		"",
		"stock",
		"stock:abc",
		"stock:1.2",
		"stock:-0.1",
		"stock:0.7;bond:0.5",
	}
	for _, input := range tests {
		if _, err := ParseComposition(input); err == nil {
			t.Errorf("ParseComposition(%q): expected an error", input)
		}
	}
}

func TestCompositionOrder(t *testing.T) {
	c := NewComposition()
	c.Set("b", Q(0.5))
	c.Set("a", Q(0.3))
	c.Set("c", Q(0.2))
	c.Set("a", Q(0.4)) // keeps its position

	if got, want := strings.Join(c.Assets(), ","), "b,a,c"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}

	c.Delete("a")
	if got, want := strings.Join(c.Assets(), ","), "b,c"; got != want {
		t.Errorf("order after delete = %s, want %s", got, want)
	}
}

func TestCompositionString(t *testing.T) {
	c := NewComposition()
	c.Set("stock", Q(0.6))
	c.Set(AssetCash, Q(0.4))
	if got, want := c.String(), "stock:0.6;cash:0.4"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}
