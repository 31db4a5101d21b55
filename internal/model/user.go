package model

type User struct {
	BaseModel
	Username         string              `gorm:"size:100;not null;uniqueIndex" json:"username"`
	ProfilePicture   string              `gorm:"size:1000" json:"profile_picture,omitempty"`
	ExperiencePoints int                 `gorm:"default:0" json:"experience_points"`
	Badges           StringArray         `gorm:"type:jsonb" json:"badges"`
	DailyChallenges  ChallengeAssignment `gorm:"type:jsonb" json:"daily_challenges"`

	Repositories  []Repository  `gorm:"foreignKey:OwnerID" json:"-"`
	ChatHistories []ChatHistory `gorm:"foreignKey:OwnerID" json:"-"`
	StudyStats    []StudyStats  `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CalculateLevel derives the level from XP: level 1 starts at 0, each level
// costs 100*level more than the last (thresholds 100, 300, 600, 1000, ...).
func CalculateLevel(xp int) int {
	level := 1
	required := 100
	for xp >= required {
		level++
		required += 100 * level
	}
	return level
}

// NextLevelXP returns the total XP at which the next level is reached.
func NextLevelXP(xp int) int {
	level := 1
	required := 100
	for xp >= required {
		level++
		required += 100 * level
	}
	return required
}
