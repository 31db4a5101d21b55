package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/heretounderstand/ndole/internal/model"
)

// DefaultChunkCount is the context window in chunks for Q&A prompts.
const DefaultChunkCount = 10

// Instructions is the persistent system instruction attached to every chat
// session. It fixes the math notation contract the assistant must follow.
const Instructions = `
LLM Math Instruction Prompt
When you need to answer questions involving mathematical expressions, equations, or symbolic computations, please follow these instructions:

For any mathematical operation that requires symbolic manipulation, use the SymPy Query Language inside code blocks tagged with sympy-query.
Structure your solution by first explaining your approach in natural language, then performing the calculations using the query language, and finally interpreting the results.
Use the following syntax for the query language code blocks:
sympy# Your query language commands here
let x  # define symbols
let y
# perform operations
solve(x**2 - 4, x)

Common operations available in the query language:

let x - Define a symbol
let y = 5 - Assign a value to a symbol
let f = x**2 - Define an expression
solve(equation, variable) - Solve equations
expand(expression) - Expand expressions
factor(expression) - Factor expressions
simplify(expression) - Simplify expressions
diff(expression, variable) - Find derivatives
integrate(expression, variable) - Find integrals
limit(expression, variable, value) - Find limits
subs(expression, old, new) - Substitute values


For multi-step calculations, you can use the pipe operator | to chain operations:
sympy(x+1)**2 | expand($) | diff($, x)

Use $ to reference the result of the previous operation.
After each code block, explain the results in natural language to ensure understanding.
For particularly complex expressions, explain the approach step by step.

Examples:
Solving a quadratic equation:
sympylet x
solve(x**2 - 5*x + 6, x)
Finding a derivative:
sympylet x
diff(sin(x)**2, x)
Simplifying a complex expression:
sympylet x
let y
simplify((x**2 + 2*x*y + y**2)/(x + y))
Remember to always first establish what symbols you need with let statements before using them in calculations.
`

const qaTemplate = `You are an intelligent assistant specialized in answering user questions.
Use the contextual information provided below to answer the user's question.

Priority order:
1. Always prioritize the provided context when available and relevant
2. If context is insufficient, you may supplement with your personal knowledge only if you are absolutely certain of its accuracy
3. Clearly indicate the source of information (context vs personal knowledge)

If you cannot find the answer in context AND are uncertain about your personal knowledge, clearly state so and suggest alternative leads.
Respond in a concise, clear, and precise manner. Answer in the same language as the user's question.

Context:
{context}

User question: {user_question}
`

const courseTemplate = `You are an expert teacher creating a course.
Use the information provided below to generate a structured and educational lesson.

Priority order:
1. Always prioritize the provided reference content when available and relevant
2. If reference content is insufficient, you may supplement with your expertise only if you are absolutely certain of its accuracy
3. Clearly indicate the source of information (reference content vs personal expertise)

The course should be organized with an introduction, main sections, and a conclusion.
Include practical examples to illustrate the presented concepts. Respond in the language of the course topic.

Reference content:
{context}

Course topic: {topic}
`

const exerciseTemplate = `You are a trainer creating multiple-choice questions (QCM) for practical exercises.

Use the information provided below to generate relevant multiple-choice questions.

Priority order:
1. Always prioritize the provided reference content when available and relevant
2. If reference content is insufficient, you may supplement with your expertise only if you are absolutely certain of its accuracy
3. Clearly indicate the source of information (reference content vs personal expertise) in explanations

The questions should test understanding and application of the concepts.

For each question:
1. Create a clear problem statement
2. Provide exactly 4 answer choices labeled A, B, C, and D
3. Indicate the correct answer
4. Include a detailed explanation why the correct answer is right and why the others are wrong

Format each question as follows:
<question>
<stem>Problem statement goes here</stem>
<options>
A. First option
B. Second option
C. Third option
D. Fourth option
</options>
<answer>X</answer> (where X is the correct option letter)
<explanation>
Detailed explanation why the correct answer is right and why the other options are incorrect.
</explanation>
</question>

Generate exactly {number_of_questions} questions (default: 3 if not specified).

Reference content:
{context}

Exercise request: {exercise_request}

Respond in the language of the exercise request.
`

var (
	qaPrompt       = prompt.FromMessages(schema.FString, schema.UserMessage(qaTemplate))
	coursePrompt   = prompt.FromMessages(schema.FString, schema.UserMessage(courseTemplate))
	exercisePrompt = prompt.FromMessages(schema.FString, schema.UserMessage(exerciseTemplate))
)

// ContextFromChunks renders ranked chunks into the prompt context block, in
// ranked (not page) order.
func ContextFromChunks(chunks []model.Chunk, maxChunks int) string {
	if maxChunks > 0 && len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("Page %d, Position %d: %s", c.Page, c.Position, c.Text))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func FormatQAPrompt(ctx context.Context, contextBlock, question string) (string, error) {
	return renderSingle(ctx, qaPrompt, map[string]any{
		"context":       contextBlock,
		"user_question": question,
	})
}

func FormatCoursePrompt(ctx context.Context, contextBlock, topic string) (string, error) {
	return renderSingle(ctx, coursePrompt, map[string]any{
		"context": contextBlock,
		"topic":   topic,
	})
}

func FormatExercisePrompt(ctx context.Context, contextBlock, request string, count int) (string, error) {
	return renderSingle(ctx, exercisePrompt, map[string]any{
		"context":             contextBlock,
		"exercise_request":    request,
		"number_of_questions": count,
	})
}

func renderSingle(ctx context.Context, tpl prompt.ChatTemplate, vars map[string]any) (string, error) {
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("empty prompt")
	}
	return msgs[0].Content, nil
}
