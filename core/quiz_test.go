package core

import "testing"

func bank() []Question {
	return []Question{
		{ID: "q1", CorrectAnswer: 0, Explanation: "e1"},
		{ID: "q2", CorrectAnswer: 1, Explanation: "e2"},
		{ID: "q3", CorrectAnswer: 2, Explanation: "e3"},
		{ID: "q4", CorrectAnswer: 3, Explanation: "e4"},
	}
}

func TestScoreQuizAllCorrect(t *testing.T) {
	res := ScoreQuiz(bank(), []int{0, 1, 2, 3})
	if res.Score != 100 || !res.Passed || res.CorrectCount != 4 {
		t.Fatalf("got %+v", res)
	}
}

func TestScoreQuizOneCorrect(t *testing.T) {
	res := ScoreQuiz(bank(), []int{1, 1, 1, 1})
	if res.Score != 25 || res.Passed || res.CorrectCount != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestScoreQuizMissingAnswersIncorrect(t *testing.T) {
	res := ScoreQuiz(bank(), []int{0})
	if res.CorrectCount != 1 || res.TotalQuestions != 4 || res.Score != 25 {
		t.Fatalf("got %+v", res)
	}
}

func TestScoreQuizFeedbackAlwaysRevealed(t *testing.T) {
	res := ScoreQuiz(bank(), []int{3, 1, 0, 0})
	if len(res.Results) != 4 {
		t.Fatalf("want 4 results, got %d", len(res.Results))
	}
	for i, r := range res.Results {
		if r.Explanation == "" {
			t.Fatalf("result %d missing explanation", i)
		}
		if r.CorrectAnswer != bank()[i].CorrectAnswer {
			t.Fatalf("result %d correct index not revealed", i)
		}
	}
}

func TestScoreQuizPassBoundary(t *testing.T) {
	questions := bank()[:3]
	// 2/3 = 66.7 rounds to 67: fail
	if res := ScoreQuiz(questions, []int{0, 1, 0}); res.Passed || res.Score != 67 {
		t.Fatalf("got %+v", res)
	}
	// 3/3: pass
	if res := ScoreQuiz(questions, []int{0, 1, 2}); !res.Passed {
		t.Fatalf("got %+v", res)
	}
}

func TestScoreQuizEmptyBank(t *testing.T) {
	res := ScoreQuiz(nil, nil)
	if res.Score != 0 || res.Passed || res.TotalQuestions != 0 {
		t.Fatalf("got %+v", res)
	}
}
