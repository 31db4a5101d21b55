package model

import (
	"time"

	"github.com/google/uuid"
)

// StudyStats is one calendar day's accumulated activity for a user. Exactly
// one row exists per (user, day); same-day updates merge into it in place.
// Counters are daily activity, not running totals; cumulative totals come
// from summing the whole history.
type StudyStats struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stats_user_day" json:"user_id"`
	Day    time.Time `gorm:"type:date;not null;uniqueIndex:idx_stats_user_day" json:"day"`

	TotalStudyTime       int `gorm:"default:0" json:"total_study_time"`
	DocumentsRead        int `gorm:"default:0" json:"documents_read"`
	DocumentsUploaded    int `gorm:"default:0" json:"documents_uploaded"`
	RepositoriesCreated  int `gorm:"default:0" json:"repositories_created"`
	RepositoriesAccessed int `gorm:"default:0" json:"repositories_accessed"`
	CoursesCreated       int `gorm:"default:0" json:"courses_created"`
	ChatsCreated         int `gorm:"default:0" json:"chats_created"`
	MessagesSent         int `gorm:"default:0" json:"messages_sent"`
	QuizzesCreated       int `gorm:"default:0" json:"quizzes_created"`
	QuizzesCompleted     int `gorm:"default:0" json:"quizzes_completed"`
	QuestionsAsked       int `gorm:"default:0" json:"questions_asked"`
	QuestionsAnswered    int `gorm:"default:0" json:"questions_answered"`
	CorrectAnswers       int `gorm:"default:0" json:"correct_answers"`
	ChallengesCompleted  int `gorm:"default:0" json:"challenges_completed"`
	XPGained             int `gorm:"default:0" json:"xp_gained"`

	StreakDays   int       `gorm:"default:0" json:"streak_days"`
	LastActivity time.Time `gorm:"not null" json:"last_activity"`
}

func (StudyStats) TableName() string {
	return "study_stats"
}

// StatsDelta is a partial update submitted with an XP-earning action; only
// the fields relevant to that action are non-zero.
type StatsDelta struct {
	DocumentsRead        int `json:"documents_read,omitempty"`
	DocumentsUploaded    int `json:"documents_uploaded,omitempty"`
	RepositoriesCreated  int `json:"repositories_created,omitempty"`
	RepositoriesAccessed int `json:"repositories_accessed,omitempty"`
	CoursesCreated       int `json:"courses_created,omitempty"`
	ChatsCreated         int `json:"chats_created,omitempty"`
	MessagesSent         int `json:"messages_sent,omitempty"`
	QuizzesCreated       int `json:"quizzes_created,omitempty"`
	QuizzesCompleted     int `json:"quizzes_completed,omitempty"`
	QuestionsAsked       int `json:"questions_asked,omitempty"`
	QuestionsAnswered    int `json:"questions_answered,omitempty"`
	CorrectAnswers       int `json:"correct_answers,omitempty"`
	XPGained             int `json:"xp_gained,omitempty"`
}

// StudyTotals is the cumulative view over all daily snapshots: counters are
// summed, streak takes the maximum.
type StudyTotals struct {
	TotalStudyTime       int `json:"total_study_time"`
	DocumentsRead        int `json:"documents_read"`
	DocumentsUploaded    int `json:"documents_uploaded"`
	RepositoriesCreated  int `json:"repositories_created"`
	RepositoriesAccessed int `json:"repositories_accessed"`
	CoursesCreated       int `json:"courses_created"`
	ChatsCreated         int `json:"chats_created"`
	MessagesSent         int `json:"messages_sent"`
	QuizzesCreated       int `json:"quizzes_created"`
	QuizzesCompleted     int `json:"quizzes_completed"`
	QuestionsAsked       int `json:"questions_asked"`
	QuestionsAnswered    int `json:"questions_answered"`
	CorrectAnswers       int `json:"correct_answers"`
	ChallengesCompleted  int `json:"challenges_completed"`
	XPGained             int `json:"xp_gained"`
	StreakDays           int `json:"streak_days"`
}

// SumStats folds daily snapshots into cumulative totals.
func SumStats(snapshots []StudyStats) StudyTotals {
	var t StudyTotals
	for _, s := range snapshots {
		t.TotalStudyTime += s.TotalStudyTime
		t.DocumentsRead += s.DocumentsRead
		t.DocumentsUploaded += s.DocumentsUploaded
		t.RepositoriesCreated += s.RepositoriesCreated
		t.RepositoriesAccessed += s.RepositoriesAccessed
		t.CoursesCreated += s.CoursesCreated
		t.ChatsCreated += s.ChatsCreated
		t.MessagesSent += s.MessagesSent
		t.QuizzesCreated += s.QuizzesCreated
		t.QuizzesCompleted += s.QuizzesCompleted
		t.QuestionsAsked += s.QuestionsAsked
		t.QuestionsAnswered += s.QuestionsAnswered
		t.CorrectAnswers += s.CorrectAnswers
		t.ChallengesCompleted += s.ChallengesCompleted
		t.XPGained += s.XPGained
		if s.StreakDays > t.StreakDays {
			t.StreakDays = s.StreakDays
		}
	}
	return t
}

// Field returns a named counter, for the data-driven badge and challenge
// evaluators. Unknown names return 0.
func (t StudyTotals) Field(name string) int {
	switch name {
	case "total_study_time":
		return t.TotalStudyTime
	case "documents_read":
		return t.DocumentsRead
	case "documents_uploaded":
		return t.DocumentsUploaded
	case "repositories_created":
		return t.RepositoriesCreated
	case "repositories_accessed":
		return t.RepositoriesAccessed
	case "courses_created":
		return t.CoursesCreated
	case "chats_created":
		return t.ChatsCreated
	case "messages_sent":
		return t.MessagesSent
	case "quizzes_created":
		return t.QuizzesCreated
	case "quizzes_completed":
		return t.QuizzesCompleted
	case "questions_asked":
		return t.QuestionsAsked
	case "questions_answered":
		return t.QuestionsAnswered
	case "correct_answers":
		return t.CorrectAnswers
	case "challenges_completed":
		return t.ChallengesCompleted
	case "xp_gained":
		return t.XPGained
	case "streak_days":
		return t.StreakDays
	}
	return 0
}

// Field returns a named counter from a single day's snapshot, for daily
// challenge evaluation.
func (s StudyStats) Field(name string) int {
	switch name {
	case "total_study_time":
		return s.TotalStudyTime
	case "documents_read":
		return s.DocumentsRead
	case "documents_uploaded":
		return s.DocumentsUploaded
	case "repositories_created":
		return s.RepositoriesCreated
	case "repositories_accessed":
		return s.RepositoriesAccessed
	case "courses_created":
		return s.CoursesCreated
	case "chats_created":
		return s.ChatsCreated
	case "messages_sent":
		return s.MessagesSent
	case "quizzes_created":
		return s.QuizzesCreated
	case "quizzes_completed":
		return s.QuizzesCompleted
	case "questions_asked":
		return s.QuestionsAsked
	case "questions_answered":
		return s.QuestionsAnswered
	case "correct_answers":
		return s.CorrectAnswers
	case "challenges_completed":
		return s.ChallengesCompleted
	case "xp_gained":
		return s.XPGained
	}
	return 0
}
