package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heretounderstand/ndole/internal/model"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return parsed
}

func TestMergeSameDaySumsCounters(t *testing.T) {
	base := day(t, "2026-03-02 10:00")
	snap := model.StudyStats{
		UserID:       uuid.New(),
		Day:          day(t, "2026-03-02 00:00"),
		MessagesSent: 1,
		StreakDays:   4,
		LastActivity: base,
	}

	merged := mergeSameDay(snap, model.StatsDelta{MessagesSent: 2}, base.Add(5*time.Minute), false)
	assert.Equal(t, 3, merged.MessagesSent)
	assert.Equal(t, 4, merged.StreakDays, "streak carries within a day")
	assert.Equal(t, int((5 * time.Minute).Seconds()), merged.TotalStudyTime)
	assert.Equal(t, base.Add(5*time.Minute), merged.LastActivity)
}

func TestMergeSameDayCapsIdleGap(t *testing.T) {
	base := day(t, "2026-03-02 08:00")
	snap := model.StudyStats{LastActivity: base}

	merged := mergeSameDay(snap, model.StatsDelta{}, base.Add(3*time.Hour), false)
	assert.Equal(t, int(maxIdleGap.Seconds()), merged.TotalStudyTime)
}

func TestMergeSameDayLoginAddsNoStudyTime(t *testing.T) {
	base := day(t, "2026-03-02 08:00")
	snap := model.StudyStats{LastActivity: base, TotalStudyTime: 120}

	merged := mergeSameDay(snap, model.StatsDelta{XPGained: 10}, base.Add(10*time.Minute), true)
	assert.Equal(t, 120, merged.TotalStudyTime)
	assert.Equal(t, 10, merged.XPGained)
}

func TestNewDaySnapshotExtendsStreak(t *testing.T) {
	userID := uuid.New()
	prev := &model.StudyStats{
		UserID:       userID,
		Day:          day(t, "2026-03-01 00:00"),
		StreakDays:   6,
		LastActivity: day(t, "2026-03-01 20:00"),
	}

	snap := newDaySnapshot(prev, userID, model.StatsDelta{MessagesSent: 1}, day(t, "2026-03-02 09:30"))
	assert.Equal(t, 7, snap.StreakDays)
	assert.Equal(t, 1, snap.MessagesSent)
	assert.Equal(t, day(t, "2026-03-02 00:00"), snap.Day)
}

func TestNewDaySnapshotResetsStreakAfterGap(t *testing.T) {
	userID := uuid.New()
	prev := &model.StudyStats{
		UserID:       userID,
		Day:          day(t, "2026-03-01 00:00"),
		StreakDays:   6,
		LastActivity: day(t, "2026-03-01 09:30"),
	}

	snap := newDaySnapshot(prev, userID, model.StatsDelta{}, day(t, "2026-03-04 09:30"))
	assert.Equal(t, 1, snap.StreakDays, "a multi-day gap starts the streak over")
}

func TestNewDaySnapshotResetsAfterLongGapOnAdjacentDays(t *testing.T) {
	userID := uuid.New()
	prev := &model.StudyStats{
		UserID:       userID,
		Day:          day(t, "2026-03-01 00:00"),
		StreakDays:   6,
		LastActivity: day(t, "2026-03-01 00:10"),
	}

	// Adjacent calendar days, but almost 48 hours of silence.
	snap := newDaySnapshot(prev, userID, model.StatsDelta{}, day(t, "2026-03-02 23:59"))
	assert.Equal(t, 1, snap.StreakDays)
}

func TestNewDaySnapshotFirstEver(t *testing.T) {
	snap := newDaySnapshot(nil, uuid.New(), model.StatsDelta{XPGained: 10}, day(t, "2026-03-02 09:30"))
	assert.Equal(t, 1, snap.StreakDays)
	assert.Equal(t, 10, snap.XPGained)
}

func TestRolloverKeepsDaysDistinct(t *testing.T) {
	userID := uuid.New()
	day1 := newDaySnapshot(nil, userID, model.StatsDelta{MessagesSent: 2}, day(t, "2026-03-01 12:00"))
	day2 := newDaySnapshot(&day1, userID, model.StatsDelta{MessagesSent: 5}, day(t, "2026-03-02 12:00"))

	assert.NotEqual(t, day1.Day, day2.Day)
	totals := model.SumStats([]model.StudyStats{day1, day2})
	assert.Equal(t, 7, totals.MessagesSent)
	assert.Equal(t, 2, totals.StreakDays)
}

func TestEvaluateChallenges(t *testing.T) {
	assignment := model.ChallengeAssignment{
		Date: "2026-03-02",
		Challenges: []model.DailyChallenge{
			{Name: "Send 10 messages today", StatField: "messages_sent", TargetValue: 10, XPReward: 25},
			{Name: "Read 2 documents today", StatField: "documents_read", TargetValue: 2, XPReward: 30},
		},
	}
	snap := model.StudyStats{MessagesSent: 12, DocumentsRead: 1}

	updated, bonus, completed := evaluateChallenges(assignment, snap)
	assert.Equal(t, 25, bonus)
	assert.Equal(t, []string{"Send 10 messages today"}, completed)
	assert.True(t, updated.Challenges[0].Completed)
	assert.False(t, updated.Challenges[1].Completed)
}

func TestEvaluateChallengesAwardsOnce(t *testing.T) {
	assignment := model.ChallengeAssignment{
		Challenges: []model.DailyChallenge{
			{Name: "Send 10 messages today", StatField: "messages_sent", TargetValue: 10, XPReward: 25, Completed: true},
		},
	}
	snap := model.StudyStats{MessagesSent: 50}

	_, bonus, completed := evaluateChallenges(assignment, snap)
	assert.Zero(t, bonus)
	assert.Empty(t, completed)
}

func TestEvaluateChallengesDoesNotMutateInput(t *testing.T) {
	assignment := model.ChallengeAssignment{
		Challenges: []model.DailyChallenge{
			{Name: "Send 10 messages today", StatField: "messages_sent", TargetValue: 10, XPReward: 25},
		},
	}
	snap := model.StudyStats{MessagesSent: 12}

	_, _, _ = evaluateChallenges(assignment, snap)
	assert.False(t, assignment.Challenges[0].Completed)
}

func TestPickChallenges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	assignment := PickChallenges(rng, day(t, "2026-03-02 08:00"), DailyChallengesPerDay)

	assert.Equal(t, "2026-03-02", assignment.Date)
	require.Len(t, assignment.Challenges, DailyChallengesPerDay)

	names := map[string]bool{}
	for _, ch := range assignment.Challenges {
		assert.False(t, ch.Completed)
		assert.False(t, names[ch.Name], "duplicate challenge %q", ch.Name)
		names[ch.Name] = true
	}
}

func TestSameDay(t *testing.T) {
	assert.True(t, sameDay(day(t, "2026-03-02 00:01"), day(t, "2026-03-02 23:59")))
	assert.False(t, sameDay(day(t, "2026-03-02 23:59"), day(t, "2026-03-03 00:01")))
}
