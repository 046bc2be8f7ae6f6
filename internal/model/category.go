package model

// Category is a group of externally tracked objects sharing one cull rule.
type Category uint8

const (
	CategoryActionDoor Category = iota
	CategoryEnemy
	CategoryFoeSpawner
	CategoryLoot
	CategoryStaticNPC
	CategoryDungeonBlock
	CategoryBillboard
	// CategoryCivilianMobile is tracked but never culled: civilian mobiles
	// hide themselves when far from the player.
	CategoryCivilianMobile

	categoryCount
)

// CategoryCount is the number of defined categories.
const CategoryCount = int(categoryCount)

var categoryNames = [categoryCount]string{
	CategoryActionDoor:     "action_door",
	CategoryEnemy:          "enemy",
	CategoryFoeSpawner:     "foe_spawner",
	CategoryLoot:           "loot",
	CategoryStaticNPC:      "static_npc",
	CategoryDungeonBlock:   "dungeon_block",
	CategoryBillboard:      "billboard",
	CategoryCivilianMobile: "civilian_mobile",
}

func (c Category) String() string {
	if c >= categoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// Valid reports whether c is a defined category.
func (c Category) Valid() bool {
	return c < categoryCount
}

// AllCategories returns every defined category in declaration order.
func AllCategories() []Category {
	out := make([]Category, 0, categoryCount)
	for c := range categoryCount {
		out = append(out, c)
	}
	return out
}

// ParseCategory resolves a category by its String() name.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return Category(c), true
		}
	}
	return 0, false
}
