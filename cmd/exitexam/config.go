package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/exitexam/internal/model"
)

var defaultSubjects = []string{
	"Computer Programming",
	"Fundamental Database Systems",
	"Object Oriented Programming",
	"Computer organization and Architecture",
	"Data Communication and Computer Networking",
	"Data Structures and Algorithms",
	"Web programming",
	"Operating System",
	"Software Engineering",
	"Design and Analysis of Algorithms",
	"Introduction to Artificial Intelligence",
	"Computer Security",
	"Network and System Administration",
	"Automata and Complexity Theory",
	"Compiler Design",
	"Advanced Databse",
}

// addExamFlags registers the exam definition: subjects, sampling rules and
// metadata shown to the exam taker.
func addExamFlags(f *pflag.FlagSet) {
	f.StringSlice("subjects", defaultSubjects, "Exam subjects, in draw order")
	f.Int("base-per-subject", 6, "Questions drawn from every subject")
	f.Int("extra-total", 4, "Bonus questions in total")
	f.Int("extra-distinct", 4, "Distinct subjects that receive one bonus question")
	f.Int("duration", 180, "Exam duration in minutes")
	f.String("title", "Computer Science Exit Exam (Mock)", "Exam title")
	f.String("subject-label", "Ethiopian Exit Exam - Computer Science", "Exam subject label")
	f.String("exam-type", model.ExamTypeExit, "Exam type recorded on results")
}

func examConfigFrom(v *viper.Viper) model.ExamConfig {
	return model.ExamConfig{
		ExamType:        v.GetString("exam-type"),
		Title:           v.GetString("title"),
		SubjectLabel:    v.GetString("subject-label"),
		DurationMinutes: v.GetInt("duration"),
		Subjects:        v.GetStringSlice("subjects"),
		Rules: model.SamplingRules{
			BaseQuestionsPerSubject: v.GetInt("base-per-subject"),
			ExtraQuestionsTotal:     v.GetInt("extra-total"),
			ExtraDistinctSubjects:   v.GetInt("extra-distinct"),
		},
	}
}
