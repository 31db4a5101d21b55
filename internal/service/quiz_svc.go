package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/pkg/apperr"
	"github.com/heretounderstand/ndole/internal/repository"
)

var (
	questionRe    = regexp.MustCompile(`(?s)<question>(.*?)</question>`)
	stemRe        = regexp.MustCompile(`(?s)<stem>(.*?)</stem>`)
	optionsRe     = regexp.MustCompile(`(?s)<options>(.*?)</options>`)
	answerRe      = regexp.MustCompile(`<answer>([A-D])</answer>`)
	explanationRe = regexp.MustCompile(`(?s)<explanation>(.*?)</explanation>`)
)

// QuizQuestion is one parsed multiple-choice question.
type QuizQuestion struct {
	Stem          string            `json:"stem"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// ExtractQuestions parses the tagged question blocks out of generated
// exercise text. Blocks missing any of the four parts, including blocks
// cut off by a truncated generation, are skipped rather than failing the
// whole extraction.
func ExtractQuestions(text string) []QuizQuestion {
	var questions []QuizQuestion
	for _, m := range questionRe.FindAllStringSubmatch(text, -1) {
		content := m[1]

		stem := stemRe.FindStringSubmatch(content)
		options := optionsRe.FindStringSubmatch(content)
		answer := answerRe.FindStringSubmatch(content)
		explanation := explanationRe.FindStringSubmatch(content)
		if stem == nil || options == nil || answer == nil || explanation == nil {
			continue
		}

		opts := make(map[string]string)
		for _, line := range strings.Split(strings.TrimSpace(options[1]), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			letter := string(line[0])
			text := ""
			if len(line) > 2 {
				text = strings.TrimSpace(line[2:])
			}
			opts[letter] = text
		}

		questions = append(questions, QuizQuestion{
			Stem:          strings.TrimSpace(stem[1]),
			Options:       opts,
			CorrectAnswer: answer[1],
			Explanation:   strings.TrimSpace(explanation[1]),
		})
	}
	return questions
}

// GradeResult is the outcome of grading one quiz submission.
type GradeResult struct {
	Total         int            `json:"total"`
	Correct       int            `json:"correct"`
	XPEarned      int            `json:"xp_earned"`
	PerAnswer     []bool         `json:"per_answer"`
	Questions     []QuizQuestion `json:"questions"`
	AlreadyGraded bool           `json:"already_graded"`
}

// QuizService extracts questions from exercise messages and grades answers
// against them.
type QuizService struct {
	chatRepo *repository.ChatRepository
	logger   *slog.Logger
}

func NewQuizService(chatRepo *repository.ChatRepository) *QuizService {
	return &QuizService{
		chatRepo: chatRepo,
		logger:   slog.Default().With("component", "quiz"),
	}
}

// gradableMessage guards that the message belongs to the given chat and came
// from the assistant. A message in another chat reads as not found so the
// response does not reveal whether the id exists elsewhere.
func gradableMessage(msg *model.Message, chatID uuid.UUID) error {
	if msg.ChatID != chatID {
		return apperr.NotFound("message %s not found", msg.ID)
	}
	if !msg.IsAssistant {
		return apperr.Validation("message %s is not an assistant message", msg.ID)
	}
	return nil
}

// Questions loads an exercise message of the chat and extracts its quiz
// questions.
func (s *QuizService) Questions(ctx context.Context, chatID, messageID uuid.UUID) ([]QuizQuestion, error) {
	msg, err := s.chatRepo.FindMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := gradableMessage(msg, chatID); err != nil {
		return nil, err
	}
	return ExtractQuestions(msg.Content), nil
}

// GradeAnswers compares submitted answers with the questions positionally.
// Missing answers count as wrong; extra answers are ignored. XP is a base
// of 5 plus 2 per correct answer.
func GradeAnswers(questions []QuizQuestion, answers []string) GradeResult {
	result := GradeResult{
		Total:     len(questions),
		PerAnswer: make([]bool, len(questions)),
		Questions: questions,
	}
	for i, q := range questions {
		if i < len(answers) && strings.EqualFold(strings.TrimSpace(answers[i]), q.CorrectAnswer) {
			result.PerAnswer[i] = true
			result.Correct++
		}
	}
	result.XPEarned = 5 + 2*result.Correct
	return result
}

// Grade grades a submission against the questions in an exercise message of
// the chat and records the score on the message. Grading is idempotent: a
// message that already carries a score is returned as-is with no second
// award.
func (s *QuizService) Grade(ctx context.Context, chatID, messageID uuid.UUID, answers []string) (*GradeResult, model.StatsDelta, error) {
	questions, err := s.Questions(ctx, chatID, messageID)
	if err != nil {
		return nil, model.StatsDelta{}, err
	}
	if len(questions) == 0 {
		return nil, model.StatsDelta{}, apperr.Validation("message %s contains no gradable questions", messageID)
	}

	result := GradeAnswers(questions, answers)

	score := model.JSONMap{
		"total":     result.Total,
		"correct":   result.Correct,
		"xp_earned": result.XPEarned,
	}
	stored, err := s.chatRepo.SetMessageScore(ctx, messageID, score)
	if err != nil {
		return nil, model.StatsDelta{}, err
	}
	if !stored {
		result.AlreadyGraded = true
		result.XPEarned = 0
		return &result, model.StatsDelta{}, nil
	}

	delta := model.StatsDelta{
		QuizzesCompleted:  1,
		QuestionsAnswered: result.Total,
		CorrectAnswers:    result.Correct,
		XPGained:          result.XPEarned,
	}
	s.logger.Debug("graded quiz", "message_id", messageID, "correct", result.Correct, "total", result.Total)
	return &result, delta, nil
}
