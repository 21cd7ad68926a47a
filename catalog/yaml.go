package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"learnkit/core"
)

// File-level schema for YAML course definitions. Kept separate from the
// domain types so wire tags don't leak into core.
type fileRoot struct {
	Courses []fileCourse `yaml:"courses"`
}

type fileCourse struct {
	ID      string       `yaml:"id"`
	Title   string       `yaml:"title"`
	Lessons []fileLesson `yaml:"lessons"`
}

type fileLesson struct {
	ID        string         `yaml:"id"`
	Title     string         `yaml:"title"`
	Rewards   StageRewards   `yaml:"rewards"`
	Questions []fileQuestion `yaml:"questions"`
}

type fileQuestion struct {
	ID            string   `yaml:"id"`
	Prompt        string   `yaml:"prompt"`
	Options       []string `yaml:"options"`
	CorrectAnswer int      `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
	Difficulty    string   `yaml:"difficulty"`
	XP            int      `yaml:"xp"`
}

// LoadFile reads course definitions from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes YAML course definitions.
func Parse(b []byte) (*Catalog, error) {
	var root fileRoot
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	courses := make([]Course, 0, len(root.Courses))
	for _, fc := range root.Courses {
		course := Course{ID: fc.ID, Title: fc.Title}
		for _, fl := range fc.Lessons {
			lesson := Lesson{ID: fl.ID, Title: fl.Title, Rewards: fl.Rewards}
			for _, fq := range fl.Questions {
				lesson.Questions = append(lesson.Questions, core.Question{
					ID:            fq.ID,
					Prompt:        fq.Prompt,
					Options:       fq.Options,
					CorrectAnswer: fq.CorrectAnswer,
					Explanation:   fq.Explanation,
					Difficulty:    fq.Difficulty,
					XP:            fq.XP,
				})
			}
			course.Lessons = append(course.Lessons, lesson)
		}
		courses = append(courses, course)
	}
	return New(courses...)
}
