package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heretounderstand/ndole/internal/model"
	"github.com/heretounderstand/ndole/internal/pkg/apperr"
)

const wellFormedQuestion = `<question>
<stem>What is 2 + 2?</stem>
<options>
A. 3
B. 4
C. 5
D. 22
</options>
<answer>B</answer>
<explanation>
Two plus two equals four. The other options are off by one or a concatenation.
</explanation>
</question>`

const threeQuestions = wellFormedQuestion + `
<question>
<stem>Which planet is closest to the sun?</stem>
<options>
A. Venus
B. Earth
C. Mercury
D. Mars
</options>
<answer>C</answer>
<explanation>
Mercury orbits closest. Venus is second, Earth third, Mars fourth.
</explanation>
</question>
<question>
<stem>What does HTTP stand for?</stem>
<options>
A. HyperText Transfer Protocol
B. High Throughput Transport Plan
C. Host Transfer Text Protocol
D. HyperText Tunnel Port
</options>
<answer>A</answer>
<explanation>
HTTP is the HyperText Transfer Protocol; the rest are made up.
</explanation>
</question>`

func TestExtractQuestionsRoundTrip(t *testing.T) {
	questions := ExtractQuestions(threeQuestions)
	require.Len(t, questions, 3)

	for _, q := range questions {
		assert.NotEmpty(t, q.Stem)
		assert.NotEmpty(t, q.Explanation)
		assert.Len(t, q.Options, 4)
		for _, letter := range []string{"A", "B", "C", "D"} {
			assert.Contains(t, q.Options, letter)
		}
	}
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Equal(t, "C", questions[1].CorrectAnswer)
	assert.Equal(t, "A", questions[2].CorrectAnswer)
	assert.Equal(t, "4", questions[0].Options["B"])
}

func TestExtractQuestionsSkipsTruncatedBlock(t *testing.T) {
	truncated := wellFormedQuestion + `
<question>
<stem>Cut off mid-generation?</stem>
<options>
A. Yes
B. No
C. Maybe
D. Unknown
</options>
<answer>A</answer>
<explanation>
This block never closes its explanation`

	questions := ExtractQuestions(truncated)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is 2 + 2?", questions[0].Stem)
}

func TestExtractQuestionsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractQuestions(""))
	assert.Empty(t, ExtractQuestions("no tagged content at all"))
}

func TestGradableMessageRejectsForeignChat(t *testing.T) {
	chatID := uuid.New()
	msg := &model.Message{
		BaseModel:   model.BaseModel{ID: uuid.New()},
		ChatID:      uuid.New(),
		Content:     wellFormedQuestion,
		IsAssistant: true,
	}

	// A message from another chat must read as not found, never grade.
	err := gradableMessage(msg, chatID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	msg.ChatID = chatID
	assert.NoError(t, gradableMessage(msg, chatID))
}

func TestGradableMessageRejectsUserMessage(t *testing.T) {
	chatID := uuid.New()
	msg := &model.Message{
		BaseModel: model.BaseModel{ID: uuid.New()},
		ChatID:    chatID,
		Content:   "Generate 3 exercises on: algebra",
	}

	err := gradableMessage(msg, chatID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGradeAnswers(t *testing.T) {
	questions := ExtractQuestions(threeQuestions)
	require.Len(t, questions, 3)

	result := GradeAnswers(questions, []string{"B", "C", "D"})
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, []bool{true, true, false}, result.PerAnswer)
	assert.Equal(t, 5+2*2, result.XPEarned)
}

func TestGradeAnswersDeterministic(t *testing.T) {
	questions := ExtractQuestions(threeQuestions)
	answers := []string{"B", "A", "A"}

	first := GradeAnswers(questions, answers)
	second := GradeAnswers(questions, answers)
	assert.Equal(t, first.Correct, second.Correct)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.XPEarned, second.XPEarned)
}

func TestGradeAnswersMissingAndExtra(t *testing.T) {
	questions := ExtractQuestions(threeQuestions)

	// Missing answers count as wrong.
	short := GradeAnswers(questions, []string{"B"})
	assert.Equal(t, 1, short.Correct)

	// Extra answers are ignored.
	long := GradeAnswers(questions, []string{"B", "C", "A", "D", "D"})
	assert.Equal(t, 3, long.Correct)

	// Answers are matched case-insensitively with surrounding space ignored.
	sloppy := GradeAnswers(questions, []string{" b ", "c", "A"})
	assert.Equal(t, 3, sloppy.Correct)
}

func TestGradeAnswersAllWrong(t *testing.T) {
	questions := ExtractQuestions(threeQuestions)
	result := GradeAnswers(questions, []string{"D", "D", "D"})
	assert.Equal(t, 0, result.Correct)
	assert.Equal(t, 5, result.XPEarned)
}
