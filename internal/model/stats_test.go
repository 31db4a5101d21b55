package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumStats(t *testing.T) {
	snapshots := []StudyStats{
		{MessagesSent: 3, XPGained: 50, StreakDays: 2, TotalStudyTime: 600},
		{MessagesSent: 1, XPGained: 20, StreakDays: 3, TotalStudyTime: 300},
		{MessagesSent: 4, XPGained: 10, StreakDays: 1, TotalStudyTime: 0},
	}

	totals := SumStats(snapshots)
	assert.Equal(t, 8, totals.MessagesSent)
	assert.Equal(t, 80, totals.XPGained)
	assert.Equal(t, 900, totals.TotalStudyTime)
	// Streak is the historical maximum, not a sum.
	assert.Equal(t, 3, totals.StreakDays)
}

func TestSumStatsEmpty(t *testing.T) {
	totals := SumStats(nil)
	assert.Equal(t, StudyTotals{}, totals)
}

func TestTotalsField(t *testing.T) {
	totals := StudyTotals{
		TotalStudyTime: 3600,
		CoursesCreated: 4,
		StreakDays:     7,
	}
	assert.Equal(t, 3600, totals.Field("total_study_time"))
	assert.Equal(t, 4, totals.Field("courses_created"))
	assert.Equal(t, 7, totals.Field("streak_days"))
	assert.Equal(t, 0, totals.Field("no_such_counter"))
}

func TestSnapshotField(t *testing.T) {
	snap := StudyStats{QuizzesCompleted: 2, CorrectAnswers: 9}
	assert.Equal(t, 2, snap.Field("quizzes_completed"))
	assert.Equal(t, 9, snap.Field("correct_answers"))
	assert.Equal(t, 0, snap.Field("unknown"))
}
