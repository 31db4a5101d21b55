package service

import (
	"math/rand"
	"time"

	"github.com/heretounderstand/ndole/internal/model"
)

// BadgeTier orders badge rarity from bronze to diamond.
type BadgeTier string

const (
	TierBronze   BadgeTier = "bronze"
	TierSilver   BadgeTier = "silver"
	TierGold     BadgeTier = "gold"
	TierPlatinum BadgeTier = "platinum"
	TierDiamond  BadgeTier = "diamond"
)

// Badge is a data-driven achievement definition. Threshold badges compare a
// single cumulative counter against Target; accuracy badges additionally
// require MinAnswered answered questions before the ratio is considered,
// which keeps the evaluation division-safe.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Tier        BadgeTier `json:"tier"`
	StatField   string    `json:"stat_field"`
	Target      int       `json:"target"`

	// Accuracy badges only.
	MinAnswered int     `json:"min_answered,omitempty"`
	Ratio       float64 `json:"ratio,omitempty"`
}

// Earned reports whether the cumulative totals satisfy this badge.
func (b Badge) Earned(totals model.StudyTotals) bool {
	if b.Ratio > 0 {
		answered := totals.QuestionsAnswered
		if answered < b.MinAnswered {
			return false
		}
		return float64(totals.CorrectAnswers)/float64(answered) >= b.Ratio
	}
	return totals.Field(b.StatField) >= b.Target
}

// Progress reports how close the totals are to earning this badge, in
// [0, 1]. Accuracy badges report 0 until the answer minimum is met.
func (b Badge) Progress(totals model.StudyTotals) float64 {
	if b.Ratio > 0 {
		answered := totals.QuestionsAnswered
		if answered < b.MinAnswered || answered == 0 {
			return 0
		}
		p := (float64(totals.CorrectAnswers) / float64(answered)) / b.Ratio
		if p > 1 {
			p = 1
		}
		return p
	}
	if b.Target <= 0 {
		return 0
	}
	p := float64(totals.Field(b.StatField)) / float64(b.Target)
	if p > 1 {
		p = 1
	}
	return p
}

func tiered(family, field string, names, descriptions, icons [5]string, targets [5]int) []Badge {
	tiers := [5]BadgeTier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
	badges := make([]Badge, 5)
	for i := 0; i < 5; i++ {
		badges[i] = Badge{
			ID:          family + "_0" + string(rune('0'+i)),
			Name:        names[i],
			Description: descriptions[i],
			Icon:        icons[i],
			Tier:        tiers[i],
			StatField:   field,
			Target:      targets[i],
		}
	}
	return badges
}

// Badges is the full catalog, grouped by family in ascending tier order.
var Badges = buildCatalog()

func buildCatalog() []Badge {
	var all []Badge

	all = append(all, tiered("study", "total_study_time",
		[5]string{"Rookie Learner", "Study Enthusiast", "Study Master", "Study Legend", "Study Immortal"},
		[5]string{"Study for 1 hour total", "Study for 10 hours total", "Study for 50 hours total", "Study for 100 hours total", "Study for 250 hours total"},
		[5]string{"⏰", "📚", "🎓", "👑", "💎"},
		[5]int{3600, 36000, 180000, 360000, 900000})...)

	all = append(all, tiered("reader", "documents_read",
		[5]string{"First Reader", "Bookworm", "Library Master", "Knowledge Seeker", "Omnilegent Sage"},
		[5]string{"Read your first document", "Read 25 documents", "Read 100 documents", "Read 250 documents", "Read 500 documents"},
		[5]string{"📖", "🐛", "📚", "🔍", "📜"},
		[5]int{1, 25, 100, 250, 500})...)

	all = append(all, tiered("repo", "repositories_created",
		[5]string{"Repository Creator", "Organizer", "Knowledge Architect", "System Designer", "Knowledge Tycoon"},
		[5]string{"Create your first repository", "Create 5 repositories", "Create 20 repositories", "Create 50 repositories", "Create 100 repositories"},
		[5]string{"📁", "🗂️", "🏗️", "🧠", "💼"},
		[5]int{1, 5, 20, 50, 100})...)

	all = append(all, tiered("explorer", "repositories_accessed",
		[5]string{"First Repo Visit", "Repository Explorer", "Repository Navigator", "Repository Researcher", "Omniscient Miner"},
		[5]string{"Access your first repository", "Access 50 repositories", "Access 150 repositories", "Access 300 repositories", "Access 500 repositories"},
		[5]string{"👣", "🗺️", "🧭", "🔬", "⛏️"},
		[5]int{1, 50, 150, 300, 500})...)

	all = append(all, tiered("teacher", "courses_created",
		[5]string{"Teaching Novice", "Educator", "Master Teacher", "Curriculum Builder", "Education Visionary"},
		[5]string{"Create your first course", "Create 10 courses", "Create 25 courses", "Create 50 courses", "Create 100 courses"},
		[5]string{"👨‍🏫", "🎯", "🏆", "📘", "🌟"},
		[5]int{1, 10, 25, 50, 100})...)

	all = append(all, tiered("chatter", "chats_created",
		[5]string{"First Chat", "Social Butterfly", "Conversation Starter", "Dialogue Driver", "Connection Master"},
		[5]string{"Start your first conversation", "Create 10 chats", "Create 30 chats", "Create 75 chats", "Create 150 chats"},
		[5]string{"💬", "🦋", "🗨️", "🧭", "🌐"},
		[5]int{1, 10, 30, 75, 150})...)

	all = append(all, tiered("communicator", "messages_sent",
		[5]string{"First Message Sent", "Conversationalist", "Master Communicator", "Voice Amplifier", "Echo Champion"},
		[5]string{"Send your first message", "Send 100 messages", "Send 500 messages", "Send 1,000 messages", "Send 2,500 messages"},
		[5]string{"💬", "🗣️", "📢", "🎙️", "📡"},
		[5]int{1, 100, 500, 1000, 2500})...)

	all = append(all, tiered("question", "quizzes_created",
		[5]string{"Quiz Beginner", "Quiz Master", "Question Bank", "Quiz Tycoon", "Quiz Legend"},
		[5]string{"Create your first exercise", "Create 10 exercises", "Create 50 exercises", "Create 200 exercises", "Create 500 exercises"},
		[5]string{"❓", "🧠", "🏦", "👑", "💎"},
		[5]int{1, 10, 50, 200, 500})...)

	all = append(all, tiered("quiz", "quizzes_completed",
		[5]string{"Quiz Novice", "Quiz Enthusiast", "Quiz Champion", "Quiz Veteran", "Quiz Immortal"},
		[5]string{"Complete 1 exercise", "Complete 5 exercises", "Complete 25 exercises", "Complete 100 exercises", "Complete 500 exercises"},
		[5]string{"🎯", "🎲", "🏅", "🏆", "💎"},
		[5]int{1, 5, 25, 100, 500})...)

	// Accuracy family requires a minimum of answered questions per tier.
	accuracy := []struct {
		name, description string
		icon              string
		tier              BadgeTier
		minAnswered       int
		ratio             float64
	}{
		{"Careful", "Get 70% correct answers (min 10 questions)", "🧐", TierBronze, 10, 0.70},
		{"Accurate", "Get 80% correct answers (min 20 questions)", "🎯", TierSilver, 20, 0.80},
		{"Perfectionist", "Get 95% correct answers (min 50 questions)", "💎", TierGold, 50, 0.95},
		{"Genius", "Get 98% correct answers (min 100 questions)", "🧬", TierPlatinum, 100, 0.98},
		{"Inhuman", "Get 99.5% correct answers (min 250 questions)", "💠", TierDiamond, 250, 0.995},
	}
	for i, a := range accuracy {
		all = append(all, Badge{
			ID:          "careful_0" + string(rune('0'+i)),
			Name:        a.name,
			Description: a.description,
			Icon:        a.icon,
			Tier:        a.tier,
			StatField:   "correct_answers",
			MinAnswered: a.minAnswered,
			Ratio:       a.ratio,
		})
	}

	all = append(all, tiered("routine", "streak_days",
		[5]string{"Routine Starter", "Consistent Learner", "Dedicated Student", "Unstoppable", "Eternal Scholar"},
		[5]string{"Study for 3 days straight", "Study for 7 days straight", "Study for 30 days straight", "Study for 100 days straight", "Study for 365 days straight"},
		[5]string{"🔁", "📅", "🔥", "⚡", "💎"},
		[5]int{3, 7, 30, 100, 365})...)

	all = append(all, tiered("xp", "xp_gained",
		[5]string{"XP Starter", "XP Collector", "XP Master", "XP Legend", "XP Champion"},
		[5]string{"Gain 1000 XP", "Gain 10000 XP", "Gain 50000 XP", "Gain 100000 XP", "Gain 500000 XP"},
		[5]string{"⭐", "✨", "🌟", "💫", "💎"},
		[5]int{1000, 10000, 50000, 100000, 500000})...)

	all = append(all, tiered("content", "documents_uploaded",
		[5]string{"Early Bird", "Content Creator", "Pro Uploader", "Publishing Star", "Archive Master"},
		[5]string{"Upload 5 documents", "Upload 25 documents", "Upload 100 documents", "Upload 500 documents", "Upload 1000 documents"},
		[5]string{"🐦", "📝", "📤", "🌠", "💎"},
		[5]int{5, 25, 100, 500, 1000})...)

	all = append(all, tiered("challenger", "challenges_completed",
		[5]string{"Challenger", "Challenge Warrior", "Challenge Champion", "Challenge Gladiator", "Mythic Challenger"},
		[5]string{"Complete your first challenge", "Complete 10 challenges", "Complete 25 challenges", "Complete 50 challenges", "Complete 100 challenges"},
		[5]string{"⚔️", "🛡️", "👑", "🏛️", "🔥"},
		[5]int{1, 10, 25, 50, 100})...)

	return all
}

// EarnedBadges returns every badge the totals satisfy, in catalog order.
func EarnedBadges(totals model.StudyTotals) []Badge {
	var earned []Badge
	for _, b := range Badges {
		if b.Earned(totals) {
			earned = append(earned, b)
		}
	}
	return earned
}

// BadgeStatus pairs a badge with its earned state and progress for display.
type BadgeStatus struct {
	Badge    Badge   `json:"badge"`
	Earned   bool    `json:"earned"`
	Progress float64 `json:"progress"`
}

// BadgeReport evaluates the whole catalog against the totals.
func BadgeReport(totals model.StudyTotals) []BadgeStatus {
	report := make([]BadgeStatus, len(Badges))
	for i, b := range Badges {
		earned := b.Earned(totals)
		progress := 1.0
		if !earned {
			progress = b.Progress(totals)
		}
		report[i] = BadgeStatus{Badge: b, Earned: earned, Progress: progress}
	}
	return report
}

// DailyChallengesPerDay is how many pool entries each user gets per day.
const DailyChallengesPerDay = 3

// ChallengePool holds the daily challenge definitions. Study-time targets
// are in seconds to match the total_study_time counter.
var ChallengePool = []model.DailyChallenge{
	{Name: "Study for at least 30 minutes today", StatField: "total_study_time", TargetValue: 1800, XPReward: 50},
	{Name: "Study for at least 60 minutes today", StatField: "total_study_time", TargetValue: 3600, XPReward: 100},
	{Name: "Study for at least 120 minutes today", StatField: "total_study_time", TargetValue: 7200, XPReward: 200},
	{Name: "Read 2 documents today", StatField: "documents_read", TargetValue: 2, XPReward: 30},
	{Name: "Read 5 documents today", StatField: "documents_read", TargetValue: 5, XPReward: 75},
	{Name: "Read 8 documents today", StatField: "documents_read", TargetValue: 8, XPReward: 150},
	{Name: "Create 1 new course today", StatField: "courses_created", TargetValue: 1, XPReward: 40},
	{Name: "Create 2 courses today", StatField: "courses_created", TargetValue: 2, XPReward: 80},
	{Name: "Create 2 exercises today", StatField: "quizzes_created", TargetValue: 2, XPReward: 90},
	{Name: "Create 3 exercises today", StatField: "quizzes_created", TargetValue: 3, XPReward: 145},
	{Name: "Send 10 messages today", StatField: "messages_sent", TargetValue: 10, XPReward: 25},
	{Name: "Send 25 messages today", StatField: "messages_sent", TargetValue: 25, XPReward: 60},
	{Name: "Access 5 different repositories today", StatField: "repositories_accessed", TargetValue: 5, XPReward: 70},
	{Name: "Access 2 different repositories today", StatField: "repositories_accessed", TargetValue: 2, XPReward: 25},
	{Name: "Complete 2 exercises today", StatField: "quizzes_completed", TargetValue: 2, XPReward: 40},
	{Name: "Answer 10 questions correctly today", StatField: "correct_answers", TargetValue: 10, XPReward: 80},
	{Name: "Complete 5 exercises today", StatField: "quizzes_completed", TargetValue: 5, XPReward: 120},
	{Name: "Generate 5 questions today", StatField: "questions_asked", TargetValue: 5, XPReward: 30},
	{Name: "Answer 15 questions today", StatField: "questions_answered", TargetValue: 15, XPReward: 85},
}

// PickChallenges samples n distinct challenges from the pool for the given
// day, using the provided source so tests can fix the outcome.
func PickChallenges(rng *rand.Rand, day time.Time, n int) model.ChallengeAssignment {
	if n > len(ChallengePool) {
		n = len(ChallengePool)
	}
	perm := rng.Perm(len(ChallengePool))
	picked := make([]model.DailyChallenge, n)
	for i := 0; i < n; i++ {
		picked[i] = ChallengePool[perm[i]]
	}
	return model.ChallengeAssignment{
		Date:       day.Format("2006-01-02"),
		Challenges: picked,
	}
}
