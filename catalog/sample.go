package catalog

import "learnkit/core"

// Sample returns a small built-in course used by the demos and as the
// default catalog when no file is configured.
func Sample() *Catalog {
	c, err := New(Course{
		ID:    "go_basics",
		Title: "Go Basics",
		Lessons: []Lesson{
			{
				ID:      "hello",
				Title:   "Hello, World",
				Rewards: StageRewards{Read: 20, Practice: 50, Notes: 30},
				Questions: []core.Question{
					{
						ID:            "hello_q1",
						Prompt:        "Which command compiles and runs a Go program?",
						Options:       []string{"go run", "go fmt", "go vet", "go doc"},
						CorrectAnswer: 0,
						Explanation:   "`go run` builds the package and executes the resulting binary.",
						Difficulty:    "easy",
						XP:            10,
					},
					{
						ID:            "hello_q2",
						Prompt:        "What is the entry point of a Go executable?",
						Options:       []string{"init()", "main() in package main", "start()", "Main() in package app"},
						CorrectAnswer: 1,
						Explanation:   "Execution starts at func main in package main.",
						Difficulty:    "easy",
						XP:            10,
					},
				},
			},
			{
				ID:      "types",
				Title:   "Types and Values",
				Rewards: StageRewards{Read: 20, Practice: 60, Notes: 30},
				Questions: []core.Question{
					{
						ID:            "types_q1",
						Prompt:        "What is the zero value of a string?",
						Options:       []string{"nil", `""`, "0", "undefined"},
						CorrectAnswer: 1,
						Explanation:   "Strings default to the empty string, not nil.",
						Difficulty:    "easy",
						XP:            10,
					},
				},
			},
			{
				ID:      "slices",
				Title:   "Slices",
				Rewards: StageRewards{Read: 30, Practice: 70, Notes: 40},
			},
		},
	})
	if err != nil {
		// the built-in definitions are static; a failure here is a bug
		panic(err)
	}
	return c
}
