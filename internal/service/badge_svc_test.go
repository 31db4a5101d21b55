package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heretounderstand/ndole/internal/model"
)

func badgeByID(t *testing.T, id string) Badge {
	t.Helper()
	for _, b := range Badges {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("badge %s not in catalog", id)
	return Badge{}
}

func TestCatalogShape(t *testing.T) {
	require.Len(t, Badges, 70)

	seen := map[string]bool{}
	tiers := map[BadgeTier]int{}
	for _, b := range Badges {
		assert.False(t, seen[b.ID], "duplicate badge id %s", b.ID)
		seen[b.ID] = true
		tiers[b.Tier]++
	}
	for _, tier := range []BadgeTier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond} {
		assert.Equal(t, 14, tiers[tier], "tier %s", tier)
	}
}

func TestStudyTimeBoundary(t *testing.T) {
	rookie := badgeByID(t, "study_00")

	assert.False(t, rookie.Earned(model.StudyTotals{TotalStudyTime: 3599}))
	assert.True(t, rookie.Earned(model.StudyTotals{TotalStudyTime: 3600}))

	earnedAt3599 := EarnedBadges(model.StudyTotals{TotalStudyTime: 3599})
	for _, b := range earnedAt3599 {
		assert.NotEqual(t, "study_00", b.ID)
	}
	earnedAt3600 := EarnedBadges(model.StudyTotals{TotalStudyTime: 3600})
	ids := make([]string, len(earnedAt3600))
	for i, b := range earnedAt3600 {
		ids[i] = b.ID
	}
	assert.Contains(t, ids, "study_00")
}

func TestAccuracyBadgeDivisionSafety(t *testing.T) {
	careful := badgeByID(t, "careful_00")

	// Zero answered questions must neither panic nor qualify.
	assert.NotPanics(t, func() {
		assert.False(t, careful.Earned(model.StudyTotals{}))
	})
	assert.Zero(t, careful.Progress(model.StudyTotals{}))
}

func TestAccuracyBadgeThresholds(t *testing.T) {
	careful := badgeByID(t, "careful_00")

	// 70% of 10 answered.
	assert.True(t, careful.Earned(model.StudyTotals{QuestionsAnswered: 10, CorrectAnswers: 7}))
	assert.False(t, careful.Earned(model.StudyTotals{QuestionsAnswered: 10, CorrectAnswers: 6}))
	// Below the answer minimum the ratio is irrelevant.
	assert.False(t, careful.Earned(model.StudyTotals{QuestionsAnswered: 9, CorrectAnswers: 9}))
}

func TestBadgeProgress(t *testing.T) {
	rookie := badgeByID(t, "study_00")

	assert.InDelta(t, 0.5, rookie.Progress(model.StudyTotals{TotalStudyTime: 1800}), 1e-9)
	assert.InDelta(t, 1.0, rookie.Progress(model.StudyTotals{TotalStudyTime: 7200}), 1e-9, "progress is clamped")
	assert.Zero(t, rookie.Progress(model.StudyTotals{}))
}

func TestBadgeReport(t *testing.T) {
	report := BadgeReport(model.StudyTotals{DocumentsRead: 1})
	require.Len(t, report, len(Badges))

	earned := map[string]bool{}
	for _, status := range report {
		if status.Earned {
			assert.InDelta(t, 1.0, status.Progress, 1e-9)
			earned[status.Badge.ID] = true
		}
	}
	assert.True(t, earned["reader_00"])
	assert.False(t, earned["reader_01"])
}

func TestChallengePool(t *testing.T) {
	require.Len(t, ChallengePool, 19)
	for _, ch := range ChallengePool {
		assert.NotEmpty(t, ch.Name)
		assert.NotEmpty(t, ch.StatField)
		assert.Positive(t, ch.TargetValue)
		assert.Positive(t, ch.XPReward)
		assert.False(t, ch.Completed)
	}

	// Study-time targets are expressed in seconds.
	assert.Equal(t, 1800, ChallengePool[0].TargetValue)
	assert.Equal(t, 3600, ChallengePool[1].TargetValue)
	assert.Equal(t, 7200, ChallengePool[2].TargetValue)
}
