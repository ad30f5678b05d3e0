// Package builtin turns mapped spreadsheet cells into normalized animal
// records: canonical species and health values, numeric purchase cost,
// trimmed free text, and synthesized identifiers.
package builtin

import (
	"strconv"
	"strings"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/textutil"
)

// Canonical categories.
const (
	SpeciesCattle  = "Cattle"
	SpeciesSheep   = "Sheep"
	SpeciesGoat    = "Goat"
	SpeciesPig     = "Pig"
	SpeciesChicken = "Chicken"
	SpeciesDuck    = "Duck"
	SpeciesHorse   = "Horse"
	SpeciesOther   = "Other"

	HealthHealthy          = "Healthy"
	HealthSick             = "Sick"
	HealthPregnant         = "Pregnant"
	HealthUnderObservation = "Under Observation"
)

type category struct {
	name     string
	keywords []string
}

// Checked in order; the first category with a matching keyword wins.
var species = []category{
	{SpeciesCattle, []string{"cattle", "cow", "bull", "heifer", "steer", "calf", "calves", "ox", "oxen", "bovine", "bullock"}},
	{SpeciesSheep, []string{"sheep", "ewe", "ram", "lamb", "wether", "ovine", "merino", "dorper"}},
	{SpeciesGoat, []string{"goat", "doe", "buck", "kid", "billy", "nanny", "caprine"}},
	{SpeciesPig, []string{"pig", "hog", "sow", "boar", "swine", "piglet", "gilt", "porcine", "barrow"}},
	{SpeciesChicken, []string{"chicken", "hen", "rooster", "cock", "broiler", "layer", "poultry", "chick", "pullet", "bantam", "cockerel"}},
	{SpeciesDuck, []string{"duck", "drake", "mallard", "muscovy", "duckling"}},
	{SpeciesHorse, []string{"horse", "mare", "stallion", "pony", "foal", "gelding", "colt", "filly", "equine"}},
}

// Purpose words that imply cattle only when no species noun is present:
// "Beef" is Cattle, "Dairy Goat" is Goat.
var speciesModifiers = []category{
	{SpeciesCattle, []string{"beef", "dairy"}},
}

var health = []category{
	{HealthSick, []string{"sick", "ill", "illness", "unwell", "injured", "injury", "diseased", "infected", "lame", "treatment"}},
	{HealthPregnant, []string{"pregnant", "expecting", "gestating", "in calf", "in lamb", "in kid", "in foal", "in pig"}},
	{HealthUnderObservation, []string{"observation", "observe", "monitoring", "monitor", "watch", "quarantine", "isolated"}},
}

// NormalizeSpecies maps raw to a canonical species. Unknown values are
// title-cased and kept as a custom category; an absent value is Other.
func NormalizeSpecies(raw string, ok bool) string {
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return SpeciesOther
	}
	if name, hit := match(species, raw); hit {
		return name
	}
	if name, hit := match(speciesModifiers, raw); hit {
		return name
	}
	return textutil.Title(raw)
}

// NormalizeHealth maps raw to a canonical health status, Healthy by default.
func NormalizeHealth(raw string, ok bool) string {
	if !ok {
		return HealthHealthy
	}
	if name, hit := match(health, raw); hit {
		return name
	}
	return HealthHealthy
}

// NormalizeCost keeps digits, '.' and '-' and parses the rest:
// "R 1,250.50" is 1250.5, "n/a" is absent.
func NormalizeCost(raw string, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// match reports the first category with a keyword in raw. Single-word
// keywords match a whole word or its plural ("cows", "calves" is listed);
// multi-word keywords match as a phrase.
func match(cats []category, raw string) (string, bool) {
	words := textutil.Words(raw)
	if len(words) == 0 {
		return "", false
	}
	phrase := " " + strings.Join(words, " ") + " "
	for _, c := range cats {
		for _, kw := range c.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(phrase, " "+kw+" ") {
					return c.name, true
				}
				continue
			}
			for _, w := range words {
				if w == kw || w == kw+"s" || w == kw+"es" {
					return c.name, true
				}
			}
		}
	}
	return "", false
}
