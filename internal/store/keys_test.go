package store

import (
	"slices"
	"testing"
)

func TestKeys(t *testing.T) {
	a := Record{"firstname": "Scott", "lastname": "Roberts", "email": "s@x", "username": "scoot"}
	b := Record{"firstname": "Andrew", "lastname": "Maney", "email": "a@x"}

	tests := []struct {
		name string
		fn   func(a, b Record) []string
		want []string
	}{
		{"union", Union, []string{"email", "firstname", "lastname", "username"}},
		{"intersect", Intersect, []string{"email", "firstname", "lastname"}},
		{"difference", Difference, []string{"username"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(a, b); !slices.Equal(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	t.Run("empty records", func(t *testing.T) {
		if got := Union(Record{}, Record{}); len(got) != 0 {
			t.Errorf("Union of empty records = %v, want none", got)
		}
		if got := Difference(a, a); len(got) != 0 {
			t.Errorf("Difference of identical records = %v, want none", got)
		}
	})

	t.Run("symmetric difference", func(t *testing.T) {
		x := Record{"only_x": 1, "both": 2}
		y := Record{"only_y": 3, "both": 4}
		want := []string{"only_x", "only_y"}
		if got := Difference(x, y); !slices.Equal(got, want) {
			t.Errorf("Difference = %v, want %v", got, want)
		}
	})
}
