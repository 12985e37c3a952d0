package repository

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"astramate/internal/domain"
)

// catalogFile es el formato YAML del catalogo:
//
//	candidates:
//	  - id: 1
//	    name: Ayesha R.
//	    traits: {openness: 0.8, neuroticism: 0.3}
//	    love_language: Time
type catalogFile struct {
	Candidates []candidateRecord `yaml:"candidates"`
}

type candidateRecord struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Age    int    `yaml:"age"`
	Role   string `yaml:"role"`
	City   string `yaml:"city"`
	Traits struct {
		Openness          *float64 `yaml:"openness"`
		Conscientiousness *float64 `yaml:"conscientiousness"`
		Extraversion      *float64 `yaml:"extraversion"`
		Agreeableness     *float64 `yaml:"agreeableness"`
		Neuroticism       *float64 `yaml:"neuroticism"`
	} `yaml:"traits"`
	LoveLanguage string `yaml:"love_language"`
	Attachment   string `yaml:"attachment"`
	Family       string `yaml:"family"`
	Relocate     string `yaml:"relocate"`
}

// LoadCandidatesFile lee un catalogo YAML desde disco.
func LoadCandidatesFile(path string) ([]domain.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	candidates, err := LoadCandidates(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return candidates, nil
}

// LoadCandidates parsea un catalogo YAML. Rasgos ausentes quedan en el valor neutro,
// preferencias ausentes quedan sin fijar.
func LoadCandidates(r io.Reader) ([]domain.Candidate, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty catalog")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[int]bool, len(file.Candidates))
	out := make([]domain.Candidate, 0, len(file.Candidates))
	for i, rec := range file.Candidates {
		if rec.Name == "" {
			return nil, fmt.Errorf("candidate #%d: name is required", i+1)
		}
		if seen[rec.ID] {
			return nil, fmt.Errorf("candidate %q: duplicate id %d", rec.Name, rec.ID)
		}
		seen[rec.ID] = true

		profile := domain.Profile{
			LoveLanguage: domain.NewPreference(rec.LoveLanguage),
			Attachment:   domain.NewPreference(rec.Attachment),
			Family:       domain.NewPreference(rec.Family),
			Relocate:     domain.NewPreference(rec.Relocate),
		}
		traits := []struct {
			name string
			src  *float64
			dst  *float64
		}{
			{domain.QuestionOpenness, rec.Traits.Openness, &profile.Openness},
			{domain.QuestionConscientiousness, rec.Traits.Conscientiousness, &profile.Conscientiousness},
			{domain.QuestionExtraversion, rec.Traits.Extraversion, &profile.Extraversion},
			{domain.QuestionAgreeableness, rec.Traits.Agreeableness, &profile.Agreeableness},
			{domain.QuestionNeuroticism, rec.Traits.Neuroticism, &profile.Neuroticism},
		}
		for _, tr := range traits {
			*tr.dst = domain.NeutralTrait
			if tr.src == nil {
				continue
			}
			if *tr.src < 0 || *tr.src > 1 {
				return nil, fmt.Errorf("candidate %q: %s must be within [0,1], got %v", rec.Name, tr.name, *tr.src)
			}
			*tr.dst = *tr.src
		}

		out = append(out, domain.Candidate{
			ID:      rec.ID,
			Name:    rec.Name,
			Age:     rec.Age,
			Role:    rec.Role,
			City:    rec.City,
			Profile: profile,
		})
	}
	return out, nil
}
