package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"L'Aquila", "laquila"},
		{"L’Aquila", "laquila"},
		{"  Reggio   nell'Emilia ", "reggio nellemilia"},
		{"ROMA", "roma"},
		{"Forlì", "forlì"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolver_Resolve(t *testing.T) {
	aquila := Entity{ID: uuid.New(), Name: "L'Aquila"}
	roma := Entity{ID: uuid.New(), Name: "Roma"}
	reggio := Entity{ID: uuid.New(), Name: "Reggio Emilia"}
	r := NewResolver([]Entity{aquila, roma, reggio})

	tests := []struct {
		input  string
		want   Entity
		wantOK bool
	}{
		{"L'Aquila", aquila, true},
		{"LAquila", aquila, true},
		{"L' Aquila", aquila, true},
		{"l’aquila", aquila, true},
		{"  ROMA ", roma, true},
		{"reggio  emilia", reggio, true},
		{"ReggioEmilia", reggio, true},
		{"Aquila", Entity{}, false},
		{"Rome", Entity{}, false},
		{"", Entity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = (%v, %v), want (%v, %v)", tt.input, got.Name, ok, tt.want.Name, tt.wantOK)
			}
		})
	}
}

func TestResolver_ExactBeatsNormalized(t *testing.T) {
	upper := Entity{ID: uuid.New(), Name: "MASSA"}
	lower := Entity{ID: uuid.New(), Name: "Massa"}
	r := NewResolver([]Entity{upper, lower})

	if got, _ := r.Resolve("Massa"); got != lower {
		t.Errorf("exact match should win, got %q", got.Name)
	}
	if got, _ := r.Resolve("massa"); got != upper {
		t.Errorf("normalized collision should resolve to first registry entity, got %q", got.Name)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}
