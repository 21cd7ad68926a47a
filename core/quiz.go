package core

import "math"

// QuizPassThreshold is the minimum percentage score that counts as a pass.
const QuizPassThreshold = 70

// Question is one entry of a practice-stage question bank.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty,omitempty"`
	XP            int      `json:"xp,omitempty"`
}

// QuestionResult is per-question feedback. The correct index and explanation
// are always revealed, right or wrong.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer int    `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// QuizResult is the graded outcome of one submission.
type QuizResult struct {
	Score          int              `json:"score"`
	Passed         bool             `json:"passed"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Results        []QuestionResult `json:"results"`
}

// ScoreQuiz grades answers against questions by position. A missing or
// out-of-range answer counts as incorrect, never as an error. The score is
// the rounded percentage of correct answers.
func ScoreQuiz(questions []Question, answers []int) QuizResult {
	res := QuizResult{
		TotalQuestions: len(questions),
		Results:        make([]QuestionResult, 0, len(questions)),
	}
	for i, q := range questions {
		correct := i < len(answers) && answers[i] == q.CorrectAnswer
		if correct {
			res.CorrectCount++
		}
		res.Results = append(res.Results, QuestionResult{
			QuestionID:    q.ID,
			IsCorrect:     correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	if res.TotalQuestions > 0 {
		res.Score = int(math.Round(100 * float64(res.CorrectCount) / float64(res.TotalQuestions)))
	}
	res.Passed = res.TotalQuestions > 0 && res.Score >= QuizPassThreshold
	return res
}
