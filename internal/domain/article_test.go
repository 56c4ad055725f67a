package domain

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"technology", CategoryTechnology},
		{"  Sports ", CategorySports},
		{"WORLD", CategoryWorld},
		{"astrology", CategoryGeneral},
		{"", CategoryGeneral},
	}

	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryValid(t *testing.T) {
	if !CategoryFinance.Valid() {
		t.Error("finance should be valid")
	}
	if Category("Finance").Valid() {
		t.Error("mixed case should not validate")
	}
	if Category("").Valid() {
		t.Error("empty category is not valid")
	}
}

func TestHasLocation(t *testing.T) {
	lat, lon := 10.0, 20.0

	var d ArticleDraft
	if d.HasLocation() {
		t.Error("zero draft has no location")
	}

	d.Latitude = &lat
	if d.HasLocation() {
		t.Error("latitude alone is not a location")
	}

	d.Longitude = &lon
	if !d.HasLocation() {
		t.Error("expected a complete coordinate pair")
	}
}
