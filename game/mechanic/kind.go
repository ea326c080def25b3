package mechanic

import "fmt"

// Kind identifies one of the boss-specific mechanic state machines.
type Kind int

const (
	KindNone Kind = iota
	KindHazardGrid
	KindGravityWell
	KindHive
	KindHeatCycle
	KindDarkness
	KindPrism
	KindTether
	KindPermafrost
	KindArcTyrant
	KindRecursion
	kindCount
)

// Boss type tags as they appear on entity.Boss.Type.
const (
	TypeGridWarden    = "grid_warden"
	TypeNullpoint     = "nullpoint"
	TypeHive          = "hive"
	TypeFurnace       = "furnace"
	TypeUmbra         = "umbra"
	TypePrism         = "prism"
	TypeTether        = "tether"
	TypePermafrost    = "permafrost"
	TypeArcTyrant     = "arc_tyrant"
	TypeRecursion     = "recursion"
	TypeRecursionCopy = "recursion_copy"
)

var bossKinds = map[string]Kind{
	TypeGridWarden: KindHazardGrid,
	TypeNullpoint:  KindGravityWell,
	TypeHive:       KindHive,
	TypeFurnace:    KindHeatCycle,
	TypeUmbra:      KindDarkness,
	TypePrism:      KindPrism,
	TypeTether:     KindTether,
	TypePermafrost: KindPermafrost,
	TypeArcTyrant:  KindArcTyrant,
	TypeRecursion:  KindRecursion,
}

var kindNames = [kindCount]string{
	KindNone:        "none",
	KindHazardGrid:  "hazard_grid",
	KindGravityWell: "gravity_well",
	KindHive:        "hive",
	KindHeatCycle:   "heat_cycle",
	KindDarkness:    "darkness",
	KindPrism:       "prism",
	KindTether:      "tether",
	KindPermafrost:  "permafrost",
	KindArcTyrant:   "arc_tyrant",
	KindRecursion:   "recursion",
}

// KindOf resolves a boss type tag. Unknown tags and split copies map to KindNone.
func KindOf(bossType string) Kind {
	return bossKinds[bossType]
}

// KnownBossType reports whether bossType is a valid boss tag, including split copies.
func KnownBossType(bossType string) bool {
	if bossType == TypeRecursionCopy {
		return true
	}
	_, ok := bossKinds[bossType]
	return ok
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText renders the kind by name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("mechanic: unknown kind %q", text)
}
