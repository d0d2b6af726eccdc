package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Catalog is the process-lifetime operator roster: two disjoint lists plus
// the fixed set of shield operator names. It is loaded once at startup and
// never mutated afterwards.
type Catalog struct {
	Attackers []string
	Defenders []string

	shielded map[string]bool // lowercase names
}

// shieldOperators matches the set the web client special-cases.
var shieldOperators = []string{"blitz", "montagne", "osa", "blackbeard", "clash"}

func New(attackers, defenders []string) *Catalog {
	c := &Catalog{
		Attackers: attackers,
		Defenders: defenders,
		shielded:  make(map[string]bool, len(shieldOperators)),
	}
	for _, name := range shieldOperators {
		c.shielded[name] = true
	}
	return c
}

// ShieldedSet returns the lowercase shield-operator names. Callers must not
// mutate the returned map.
func (c *Catalog) ShieldedSet() map[string]bool {
	return c.shielded
}

func (c *Catalog) IsShielded(name string) bool {
	return c.shielded[strings.ToLower(name)]
}

// LoadDir builds a catalog from an asset tree: operator names are the file
// basenames (minus extension) under <root>/atk and <root>/def, the same
// layout the web client serves its portrait images from.
func LoadDir(root string) (*Catalog, error) {
	attackers, err := readNames(filepath.Join(root, "atk"))
	if err != nil {
		return nil, fmt.Errorf("loading attackers: %w", err)
	}
	defenders, err := readNames(filepath.Join(root, "def"))
	if err != nil {
		return nil, fmt.Errorf("loading defenders: %w", err)
	}
	return New(attackers, defenders), nil
}

func readNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no operators in %s", dir)
	}
	return names, nil
}

// Default returns the compiled-in roster so the server can run without an
// asset tree on disk.
func Default() *Catalog {
	return New(defaultAttackers(), defaultDefenders())
}

func defaultAttackers() []string {
	return []string{
		"sledge", "thatcher", "ash", "thermite", "twitch", "montagne",
		"glaz", "fuze", "blitz", "iq", "buck", "blackbeard", "capitao",
		"hibana", "jackal", "ying", "zofia", "dokkaebi", "lion", "finka",
		"maverick", "nomad", "gridlock", "nokk", "amaru", "kali", "iana",
		"ace", "zero", "flores", "osa", "sens", "grim", "brava", "ram",
		"deimos", "striker",
	}
}

func defaultDefenders() []string {
	return []string{
		"smoke", "mute", "castle", "pulse", "doc", "rook", "kapkan",
		"tachanka", "jager", "bandit", "frost", "valkyrie", "caveira",
		"echo", "mira", "lesion", "ela", "vigil", "maestro", "alibi",
		"clash", "kaid", "mozzie", "warden", "goyo", "wamai", "oryx",
		"melusi", "aruni", "thunderbird", "thorn", "azami", "solis",
		"fenrir", "tubarao", "skopos", "sentry",
	}
}
