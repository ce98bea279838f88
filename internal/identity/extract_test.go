package identity

import "testing"

func TestExtractPlateAndModel(t *testing.T) {
	cases := []struct {
		title string
		plate string
		model string
	}{
		{"ABC1D23 - Gol 1.0", "ABC1D23", "Gol 1.0"},
		{"ABC1234 - Uno Mille", "ABC1234", "Uno Mille"},
		{"Corolla XEi DEF4G56", "DEF4G56", "Corolla XEi"},
		{"  GHI7J89   Onix LT  ", "GHI7J89", "Onix LT"},
		{"JKL0M12-Civic", "JKL0M12", "Civic"},
	}

	for _, tc := range cases {
		got := Extract(tc.title)
		if got.Plate != tc.plate {
			t.Errorf("Extract(%q).Plate = %q, want %q", tc.title, got.Plate, tc.plate)
		}
		if got.Model != tc.model {
			t.Errorf("Extract(%q).Model = %q, want %q", tc.title, got.Model, tc.model)
		}
		if got.Ambiguous {
			t.Errorf("Extract(%q) unexpectedly ambiguous", tc.title)
		}
	}
}

func TestExtractWithoutPlateKeepsFullTitle(t *testing.T) {
	got := Extract("Carro sem identificação")
	if got.Plate != "" {
		t.Fatalf("expected empty plate, got %q", got.Plate)
	}
	if got.Model != "Carro sem identificação" {
		t.Fatalf("expected full title as model, got %q", got.Model)
	}
}

func TestExtractLowercasePlateIsNotMatched(t *testing.T) {
	// Plates are recorded uppercase on the board; lowercase tokens are model
	// text, not identity.
	got := Extract("abc1d23 gol")
	if got.Plate != "" {
		t.Fatalf("expected no plate, got %q", got.Plate)
	}
}

func TestExtractUsesFirstOfMultiplePlates(t *testing.T) {
	got := Extract("ABC1D23 troca motor DEF4G56")
	if got.Plate != "ABC1D23" {
		t.Fatalf("expected first plate, got %q", got.Plate)
	}
	if !got.Ambiguous {
		t.Fatalf("expected ambiguous flag for multiple plate tokens")
	}
}

func TestExtractEmptyTitle(t *testing.T) {
	got := Extract("")
	if got.Plate != "" || got.Model != "" {
		t.Fatalf("unexpected result %+v", got)
	}
}
