package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/godilite/cs-dashboard/internal/repository/models"
)

// Schema names the satisfaction questions and timing labels the dashboard
// reports on.
type Schema struct {
	ScoreQuestions []string                       `yaml:"score_questions"`
	TextQuestions  []string                       `yaml:"text_questions"`
	DurationLabels map[models.DurationKind]string `yaml:"duration_labels"`
	TopN           int                            `yaml:"top_n"`
}

// DefaultSchema returns the built-in question sets.
func DefaultSchema() Schema {
	return Schema{
		ScoreQuestions: []string{"A-1", "A-2", "A-4", "A-5"},
		TextQuestions:  []string{"A-3", "A-6"},
		DurationLabels: map[models.DurationKind]string{
			models.DurationWaiting:    "첫응답시간",
			models.DurationAvgReply:   "평균응답시간",
			models.DurationTotalReply: "총응답시간",
			models.DurationResolution: "해결시간",
		},
		TopN: 5,
	}
}

// LoadSchema reads a YAML schema file over the defaults. An empty path
// returns the defaults.
func LoadSchema(path string) (Schema, error) {
	s := DefaultSchema()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema: %w", err)
	}

	var override Schema
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Schema{}, fmt.Errorf("parse schema %s: %w", path, err)
	}

	if len(override.ScoreQuestions) > 0 {
		s.ScoreQuestions = override.ScoreQuestions
	}
	if len(override.TextQuestions) > 0 {
		s.TextQuestions = override.TextQuestions
	}
	for k, v := range override.DurationLabels {
		if !knownDuration(k) {
			return Schema{}, fmt.Errorf("schema %s: unknown duration field %q", path, k)
		}
		s.DurationLabels[k] = v
	}
	if override.TopN > 0 {
		s.TopN = override.TopN
	}
	return s, nil
}

// HasScore reports whether id is a configured score question.
func (s Schema) HasScore(id string) bool {
	return contains(s.ScoreQuestions, id)
}

// HasText reports whether id is a configured free-text question.
func (s Schema) HasText(id string) bool {
	return contains(s.TextQuestions, id)
}

func knownDuration(k models.DurationKind) bool {
	for _, d := range models.DurationKinds {
		if d == k {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
