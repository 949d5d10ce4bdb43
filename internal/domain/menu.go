package domain

import "time"

// DaysPerWeek is the fixed length of a weekly menu grid.
const DaysPerWeek = 7

// MenuDay holds the dish names planned for one day. Empty strings mean the
// slot is unplanned.
type MenuDay struct {
	Brunch  string `bson:"brunch,omitempty" json:"brunch,omitempty"`
	Dinner  string `bson:"dinner,omitempty" json:"dinner,omitempty"`
	Dessert string `bson:"dessert,omitempty" json:"dessert,omitempty"`
}

// WeekMenu is a user's planned menu for one week. WeekStart is the Monday of
// the week in YYYY-MM-DD form and is unique per user.
type WeekMenu struct {
	UserID    string    `bson:"user_id" json:"-"`
	WeekStart string    `bson:"week_start" json:"week_start"`
	Days      []MenuDay `bson:"days" json:"days"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DishNames returns the distinct non-empty dish names across all slots.
func (m WeekMenu) DishNames() []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)

	for _, day := range m.Days {
		for _, name := range []string{day.Brunch, day.Dinner, day.Dessert} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names
}
