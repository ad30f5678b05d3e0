package builtin

import "testing"

func TestNormalizeSpecies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		ok   bool
		want string
	}{
		{"cow", true, SpeciesCattle},
		{"Boer goat", true, SpeciesGoat},
		{"HEIFERS", true, SpeciesCattle},
		{"Dorper ewe", true, SpeciesSheep},
		{"Large White sow", true, SpeciesPig},
		{"laying hen", true, SpeciesChicken},
		{"Muscovy", true, SpeciesDuck},
		{"Quarter-horse mare", true, SpeciesHorse},
		{"calves", true, SpeciesCattle},
		{"Dairy Goat", true, SpeciesGoat},
		{"Beef Goat", true, SpeciesGoat},
		{"dairy sheep", true, SpeciesSheep},
		{"Beef", true, SpeciesCattle},
		{"dairy", true, SpeciesCattle},
		{"pigeon", true, "Pigeon"},
		{"  alpaca  ", true, "Alpaca"},
		{"guinea fowl", true, "Guinea Fowl"},
		{"", true, SpeciesOther},
		{"   ", true, SpeciesOther},
		{"cow", false, SpeciesOther},
	}
	for _, tt := range tests {
		if got := NormalizeSpecies(tt.raw, tt.ok); got != tt.want {
			t.Fatalf("NormalizeSpecies(%q, %v) = %q, want %q", tt.raw, tt.ok, got, tt.want)
		}
	}
}

func TestNormalizeHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		ok   bool
		want string
	}{
		{"sick", true, HealthSick},
		{"Ill - treating", true, HealthSick},
		{"Expecting", true, HealthPregnant},
		{"in-calf", true, HealthPregnant},
		{"under monitoring", true, HealthUnderObservation},
		{"Quarantine", true, HealthUnderObservation},
		{"fine", true, HealthHealthy},
		{"", true, HealthHealthy},
		{"sick", false, HealthHealthy},
	}
	for _, tt := range tests {
		if got := NormalizeHealth(tt.raw, tt.ok); got != tt.want {
			t.Fatalf("NormalizeHealth(%q, %v) = %q, want %q", tt.raw, tt.ok, got, tt.want)
		}
	}
}

func TestNormalizeCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"R 1,250.50", 1250.50, true},
		{"1250.5", 1250.5, true},
		{"$300", 300, true},
		{"-15", -15, true},
		{"n/a", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		got, ok := NormalizeCost(tt.raw, true)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("NormalizeCost(%q) = %v,%v, want %v,%v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
	if _, ok := NormalizeCost("100", false); ok {
		t.Fatalf("absent cost reported present")
	}
}

// Normalizing a canonical value returns it unchanged.
func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"cow", "Boer goat", "ram", "piglet", "broiler", "drake", "pony", "alpaca", "guinea fowl", ""} {
		once := NormalizeSpecies(in, in != "")
		if twice := NormalizeSpecies(once, true); twice != once {
			t.Fatalf("species %q: %q then %q", in, once, twice)
		}
	}
	for _, c := range []string{SpeciesCattle, SpeciesSheep, SpeciesGoat, SpeciesPig, SpeciesChicken, SpeciesDuck, SpeciesHorse, SpeciesOther} {
		if got := NormalizeSpecies(c, true); got != c {
			t.Fatalf("NormalizeSpecies(%q) = %q", c, got)
		}
	}
	for _, h := range []string{HealthHealthy, HealthSick, HealthPregnant, HealthUnderObservation} {
		if got := NormalizeHealth(h, true); got != h {
			t.Fatalf("NormalizeHealth(%q) = %q", h, got)
		}
	}
	v, _ := NormalizeCost("R 1,250.50", true)
	s := "1250.5"
	if again, ok := NormalizeCost(s, true); !ok || again != v {
		t.Fatalf("cost not stable: %v vs %v", v, again)
	}
}
