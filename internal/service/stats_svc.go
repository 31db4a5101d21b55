package service

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/repository"
)

// maxIdleGap bounds how much wall-clock time a single action can add to the
// study-time counter, so leaving a tab open does not count as studying.
const maxIdleGap = 30 * time.Minute

// StatsService applies activity deltas to the per-user daily snapshots.
// Every write runs in a transaction holding a row lock on the user, so
// concurrent actions for one user serialize instead of losing updates.
type StatsService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	statsRepo *repository.StatsRepository

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time

	logger *slog.Logger
}

func NewStatsService(db *gorm.DB, userRepo *repository.UserRepository, statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{
		db:        db,
		userRepo:  userRepo,
		statsRepo: statsRepo,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
		logger:    slog.Default().With("component", "stats"),
	}
}

// ApplyResult reports the outcome of one stats application.
type ApplyResult struct {
	Snapshot            model.StudyStats       `json:"snapshot"`
	XPAwarded           int                    `json:"xp_awarded"`
	ChallengeBonusXP    int                    `json:"challenge_bonus_xp"`
	CompletedChallenges []string               `json:"completed_challenges,omitempty"`
	Level               int                    `json:"level"`
	ExperiencePoints    int                    `json:"experience_points"`
	NewBadges           []Badge                `json:"new_badges,omitempty"`
	Challenges          []model.DailyChallenge `json:"challenges"`
}

// Apply merges a delta into the user's current-day snapshot, rolling over to
// a new day when the calendar day changed. It also refreshes the daily
// challenge assignment, awards challenge bonuses, credits XP, and re-derives
// badges from the updated totals.
func (s *StatsService) Apply(ctx context.Context, userID uuid.UUID, delta model.StatsDelta, isLogin bool) (*ApplyResult, error) {
	now := s.now()
	result := &ApplyResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		latest, err := s.statsRepo.FindLatest(ctx, tx, userID)
		if err != nil {
			return err
		}

		var snapshot model.StudyStats
		if latest != nil && sameDay(latest.Day, now) {
			snapshot = mergeSameDay(*latest, delta, now, isLogin)
		} else {
			snapshot = newDaySnapshot(latest, userID, delta, now)
		}

		// Reassign challenges when the stored assignment is stale or empty.
		assignment := user.DailyChallenges
		today := now.Format("2006-01-02")
		if assignment.Date != today || assignment.Empty() {
			s.mu.Lock()
			assignment = PickChallenges(s.rng, now, DailyChallengesPerDay)
			s.mu.Unlock()
		}

		assignment, bonusXP, completed := evaluateChallenges(assignment, snapshot)
		snapshot.ChallengesCompleted += len(completed)
		snapshot.XPGained += bonusXP

		if err := s.statsRepo.Save(ctx, tx, &snapshot); err != nil {
			return err
		}

		user.ExperiencePoints += delta.XPGained + bonusXP
		user.DailyChallenges = assignment

		// Re-derive badges from the full history, including this write.
		history, err := s.statsRepo.FindAllTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		totals := model.SumStats(history)

		earned := EarnedBadges(totals)
		known := make(map[string]bool, len(user.Badges))
		for _, id := range user.Badges {
			known[id] = true
		}
		ids := make(model.StringArray, len(earned))
		for i, b := range earned {
			ids[i] = b.ID
			if !known[b.ID] {
				result.NewBadges = append(result.NewBadges, b)
			}
		}
		user.Badges = ids

		if err := s.userRepo.UpdateTx(ctx, tx, user); err != nil {
			return err
		}

		result.Snapshot = snapshot
		result.XPAwarded = delta.XPGained
		result.ChallengeBonusXP = bonusXP
		result.CompletedChallenges = completed
		result.Level = model.CalculateLevel(user.ExperiencePoints)
		result.ExperiencePoints = user.ExperiencePoints
		result.Challenges = assignment.Challenges
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("applied stats delta",
		"user_id", userID, "xp", result.XPAwarded, "bonus_xp", result.ChallengeBonusXP,
		"streak", result.Snapshot.StreakDays)
	return result, nil
}

// Totals sums the user's whole snapshot history.
func (s *StatsService) Totals(ctx context.Context, userID uuid.UUID) (model.StudyTotals, error) {
	history, err := s.statsRepo.FindAll(ctx, userID)
	if err != nil {
		return model.StudyTotals{}, err
	}
	return model.SumStats(history), nil
}

// History returns the raw daily snapshots ordered by day.
func (s *StatsService) History(ctx context.Context, userID uuid.UUID) ([]model.StudyStats, error) {
	return s.statsRepo.FindAll(ctx, userID)
}

// Challenges returns the user's current assignment without mutating it.
func (s *StatsService) Challenges(ctx context.Context, userID uuid.UUID) (model.ChallengeAssignment, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.ChallengeAssignment{}, err
	}
	return user.DailyChallenges, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// mergeSameDay folds a delta into an existing same-day snapshot. Counters
// add; the streak carries over unchanged. Elapsed wall-clock time since the
// last activity counts as study time, capped so idle gaps don't inflate it.
// Login events mark presence without accruing study time.
func mergeSameDay(prev model.StudyStats, delta model.StatsDelta, now time.Time, isLogin bool) model.StudyStats {
	merged := prev
	addDelta(&merged, delta)

	if !isLogin {
		elapsed := now.Sub(prev.LastActivity)
		if elapsed > maxIdleGap {
			elapsed = maxIdleGap
		}
		if elapsed > 0 {
			merged.TotalStudyTime += int(elapsed.Seconds())
		}
	}
	merged.LastActivity = now
	return merged
}

// newDaySnapshot starts a fresh daily snapshot. The streak extends when the
// previous activity was at most 24 hours before now and resets to 1 after
// any longer silence, including the first snapshot ever. The gap is measured
// from last_activity, not calendar days, so Mar 1 00:10 followed by Mar 2
// 23:59 resets even though the days are adjacent.
func newDaySnapshot(prev *model.StudyStats, userID uuid.UUID, delta model.StatsDelta, now time.Time) model.StudyStats {
	snapshot := model.StudyStats{
		UserID:       userID,
		Day:          dayOf(now),
		LastActivity: now,
	}
	addDelta(&snapshot, delta)

	snapshot.StreakDays = 1
	if prev != nil && !prev.LastActivity.IsZero() {
		if gap := now.Sub(prev.LastActivity); gap >= 0 && gap <= 24*time.Hour {
			snapshot.StreakDays = prev.StreakDays + 1
		}
	}
	return snapshot
}

func addDelta(s *model.StudyStats, d model.StatsDelta) {
	s.DocumentsRead += d.DocumentsRead
	s.DocumentsUploaded += d.DocumentsUploaded
	s.RepositoriesCreated += d.RepositoriesCreated
	s.RepositoriesAccessed += d.RepositoriesAccessed
	s.CoursesCreated += d.CoursesCreated
	s.ChatsCreated += d.ChatsCreated
	s.MessagesSent += d.MessagesSent
	s.QuizzesCreated += d.QuizzesCreated
	s.QuizzesCompleted += d.QuizzesCompleted
	s.QuestionsAsked += d.QuestionsAsked
	s.QuestionsAnswered += d.QuestionsAnswered
	s.CorrectAnswers += d.CorrectAnswers
	s.XPGained += d.XPGained
}

// evaluateChallenges marks newly satisfied challenges complete against the
// day's snapshot and returns the updated assignment with the bonus XP and
// the names of the challenges completed by this evaluation. A challenge
// already marked complete never awards twice.
func evaluateChallenges(assignment model.ChallengeAssignment, snapshot model.StudyStats) (model.ChallengeAssignment, int, []string) {
	bonus := 0
	var completed []string
	challenges := make([]model.DailyChallenge, len(assignment.Challenges))
	copy(challenges, assignment.Challenges)

	for i := range challenges {
		if challenges[i].Completed {
			continue
		}
		if snapshot.Field(challenges[i].StatField) >= challenges[i].TargetValue {
			challenges[i].Completed = true
			bonus += challenges[i].XPReward
			completed = append(completed, challenges[i].Name)
		}
	}
	assignment.Challenges = challenges
	return assignment, bonus, completed
}
