package reminder

// LevelScores holds one category's priority per level.
type LevelScores struct {
	Gentle float64 `mapstructure:"gentle" json:"gentle"`
	Nudge  float64 `mapstructure:"nudge" json:"nudge"`
	Urgent float64 `mapstructure:"urgent" json:"urgent"`
}

func (s LevelScores) at(l Level) float64 {
	switch l {
	case LevelUrgent:
		return s.Urgent
	case LevelNudge:
		return s.Nudge
	}
	return s.Gentle
}

// Priorities ranks candidates across categories. The numbers are product
// tuning, not derived.
type Priorities struct {
	Supplement LevelScores `mapstructure:"supplement" json:"supplement"`
	Work       LevelScores `mapstructure:"work" json:"work"`
	Mood       LevelScores `mapstructure:"mood" json:"mood"`
	Plan       LevelScores `mapstructure:"plan" json:"plan"`
	Tip        float64     `mapstructure:"tip" json:"tip"`
	Name       float64     `mapstructure:"name" json:"name"`
}

func DefaultPriorities() Priorities {
	return Priorities{
		Supplement: LevelScores{Gentle: 3.2, Nudge: 4.2, Urgent: 5.0},
		Work:       LevelScores{Gentle: 2.2, Nudge: 3.4, Urgent: 4.4},
		Mood:       LevelScores{Gentle: 2.4, Nudge: 3.5, Urgent: 4.6},
		Plan:       LevelScores{Gentle: 2.5, Nudge: 3.3, Urgent: 3.9},
		Tip:        1.0,
		Name:       0.8,
	}
}

// Score returns the priority of a category at a level.
func (p Priorities) Score(c Category, l Level) float64 {
	switch c {
	case CategorySupplement:
		return p.Supplement.at(l)
	case CategoryWork:
		return p.Work.at(l)
	case CategoryMood:
		return p.Mood.at(l)
	case CategoryPlan:
		return p.Plan.at(l)
	case CategoryTip:
		return p.Tip
	case CategoryName:
		return p.Name
	}
	return 0
}
