package engine

import (
	"strings"

	"github.com/brsiege/r6-roulette-backend/internal/random"
)

// Category is the fixed binary partition of operators. The wire values
// ("atk"/"def") are what the web client sends.
type Category string

const (
	CategoryAttack  Category = "atk"
	CategoryDefense Category = "def"
)

func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAttack:
		return CategoryAttack, true
	case CategoryDefense:
		return CategoryDefense, true
	default:
		return "", false
	}
}

// Selection is one seat on the board: the operator a player currently holds.
type Selection struct {
	Operator string   `json:"operator"`
	Category Category `json:"type"`
	Nickname string   `json:"nickname"`
}

// Filter carries everything that constrains a single player's draw within
// one category.
type Filter struct {
	// Used holds the operators currently assigned to any player in this
	// category; they are excluded to keep assignments exclusive.
	Used map[string]bool
	// Ban is the player's own active ban, matched case-insensitively.
	// Invalid names simply never match; they are not validated upstream.
	Ban string
	// WantsShields, when false, excludes every operator in Shielded.
	WantsShields bool
	// Shielded is the fixed shield-operator set, lowercase names.
	Shielded map[string]bool
}

// Eligible returns the subset of the catalog the player may draw from,
// preserving catalog order.
func Eligible(catalog []string, f Filter) []string {
	ban := strings.ToLower(f.Ban)
	var out []string
	for _, op := range catalog {
		if f.Used[op] {
			continue
		}
		lower := strings.ToLower(op)
		if ban != "" && lower == ban {
			continue
		}
		if !f.WantsShields && f.Shielded[lower] {
			continue
		}
		out = append(out, op)
	}
	return out
}

// Pick selects uniformly at random from eligible. ok is false when the
// eligible set is empty, which callers treat as a silent no-op.
func Pick(eligible []string, rng random.Random) (op string, ok bool) {
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[rng.Intn(len(eligible))], true
}
