package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DailyChallenge is one per-day micro-goal: meet TargetValue on StatField
// within today's snapshot to earn XPReward once.
type DailyChallenge struct {
	Name        string `json:"name"`
	StatField   string `json:"stat_field"`
	TargetValue int    `json:"target_value"`
	XPReward    int    `json:"xp_reward"`
	Completed   bool   `json:"completed"`
}

// ChallengeAssignment is the set of challenges drawn for one calendar day,
// stored on the user row as JSONB.
type ChallengeAssignment struct {
	Date       string           `json:"date"`
	Challenges []DailyChallenge `json:"challenges"`
}

func (a ChallengeAssignment) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ChallengeAssignment) Scan(value interface{}) error {
	if value == nil {
		*a = ChallengeAssignment{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}

	return json.Unmarshal(bytes, a)
}

// Empty reports whether no challenges are currently assigned.
func (a ChallengeAssignment) Empty() bool {
	return len(a.Challenges) == 0
}
