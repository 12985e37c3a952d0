package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"astramate/internal/domain"
)

type CandidateRepository interface {
	List(ctx context.Context) ([]domain.Candidate, error)
}

// StaticCandidateRepository sirve el catalogo de demostracion en memoria.
type StaticCandidateRepository struct {
	candidates []domain.Candidate
}

func NewStaticCandidateRepository(candidates []domain.Candidate) *StaticCandidateRepository {
	return &StaticCandidateRepository{candidates: append([]domain.Candidate(nil), candidates...)}
}

func (r *StaticCandidateRepository) List(_ context.Context) ([]domain.Candidate, error) {
	return append([]domain.Candidate(nil), r.candidates...), nil
}

// DemoCandidates devuelve los tres candidatos fijos del prototipo.
func DemoCandidates() []domain.Candidate {
	return []domain.Candidate{
		{
			ID: 1, Name: "Ayesha R.", Age: 27, Role: "Product Designer", City: "Bengaluru",
			Profile: domain.Profile{
				Openness: 0.8, Conscientiousness: 0.6, Extraversion: 0.7, Agreeableness: 0.7, Neuroticism: 0.3,
				LoveLanguage: domain.NewPreference(domain.LoveLanguageTime),
				Attachment:   domain.NewPreference(domain.AttachmentSecure),
				Family:       domain.NewPreference(domain.FamilyFlexible),
				Relocate:     domain.NewPreference(domain.RelocateYes),
			},
		},
		{
			ID: 2, Name: "Meera K.", Age: 29, Role: "Data Scientist", City: "Hyderabad",
			Profile: domain.Profile{
				Openness: 0.7, Conscientiousness: 0.8, Extraversion: 0.4, Agreeableness: 0.8, Neuroticism: 0.4,
				LoveLanguage: domain.NewPreference(domain.LoveLanguageWords),
				Attachment:   domain.NewPreference(domain.AttachmentAnxious),
				Family:       domain.NewPreference(domain.FamilyNuclear),
				Relocate:     domain.NewPreference(domain.RelocateMaybe),
			},
		},
		{
			ID: 3, Name: "Sara A.", Age: 26, Role: "Architect", City: "Dubai",
			Profile: domain.Profile{
				Openness: 0.5, Conscientiousness: 0.7, Extraversion: 0.6, Agreeableness: 0.6, Neuroticism: 0.2,
				LoveLanguage: domain.NewPreference(domain.LoveLanguageTouch),
				Attachment:   domain.NewPreference(domain.AttachmentSecure),
				Family:       domain.NewPreference(domain.FamilyJoint),
				Relocate:     domain.NewPreference(domain.RelocateNo),
			},
		},
	}
}

// PgCandidateRepository guarda candidatos en Postgres con el vector de rasgos en una columna vector(5).
type PgCandidateRepository struct {
	pool *pgxpool.Pool
}

func NewPgCandidateRepository(pool *pgxpool.Pool) *PgCandidateRepository {
	return &PgCandidateRepository{pool: pool}
}

const createCandidatesTable = `
	CREATE EXTENSION IF NOT EXISTS vector;
	CREATE TABLE IF NOT EXISTS candidates (
		id            INTEGER PRIMARY KEY,
		name          TEXT NOT NULL,
		age           INTEGER NOT NULL,
		role          TEXT NOT NULL,
		city          TEXT NOT NULL,
		traits        vector(5) NOT NULL,
		love_language TEXT,
		attachment    TEXT,
		family        TEXT,
		relocate      TEXT
	);
`

// EnsureSchema crea la extension y la tabla si no existen.
func (r *PgCandidateRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createCandidatesTable)
	return err
}

func (r *PgCandidateRepository) Upsert(ctx context.Context, c domain.Candidate) error {
	const query = `
		INSERT INTO candidates (id, name, age, role, city, traits, love_language, attachment, family, relocate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			role = EXCLUDED.role,
			city = EXCLUDED.city,
			traits = EXCLUDED.traits,
			love_language = EXCLUDED.love_language,
			attachment = EXCLUDED.attachment,
			family = EXCLUDED.family,
			relocate = EXCLUDED.relocate
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Age,
		c.Role,
		c.City,
		TraitsToVector(c.Profile),
		nullablePreference(c.Profile.LoveLanguage),
		nullablePreference(c.Profile.Attachment),
		nullablePreference(c.Profile.Family),
		nullablePreference(c.Profile.Relocate),
	)
	return err
}

func (r *PgCandidateRepository) List(ctx context.Context) ([]domain.Candidate, error) {
	const query = `
		SELECT id, name, age, role, city, traits, love_language, attachment, family, relocate
		FROM candidates
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			c                                    domain.Candidate
			traits                               pgvector.Vector
			love, attachment, family, relocation *string
		)
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Age,
			&c.Role,
			&c.City,
			&traits,
			&love,
			&attachment,
			&family,
			&relocation,
		); err != nil {
			return nil, err
		}
		profile, err := ProfileFromVector(traits)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", c.ID, err)
		}
		profile.LoveLanguage = preferenceFromNullable(love)
		profile.Attachment = preferenceFromNullable(attachment)
		profile.Family = preferenceFromNullable(family)
		profile.Relocate = preferenceFromNullable(relocation)
		c.Profile = profile
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// TraitsToVector convierte el vector de rasgos al tipo pgvector.
func TraitsToVector(p domain.Profile) pgvector.Vector {
	vec := p.TraitVector()
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return pgvector.NewVector(out)
}

// ProfileFromVector reconstruye los rasgos de un Profile desde un vector(5).
func ProfileFromVector(v pgvector.Vector) (domain.Profile, error) {
	s := v.Slice()
	if len(s) != len(domain.TraitKeys) {
		return domain.Profile{}, fmt.Errorf("expected %d trait dimensions, got %d", len(domain.TraitKeys), len(s))
	}
	return domain.Profile{
		Openness:          roundTrait(s[0]),
		Conscientiousness: roundTrait(s[1]),
		Extraversion:      roundTrait(s[2]),
		Agreeableness:     roundTrait(s[3]),
		Neuroticism:       roundTrait(s[4]),
	}, nil
}

// roundTrait recorta el ruido de float32 (0.7 -> 0.699999988) a seis decimales.
func roundTrait(v float32) float64 {
	return math.Round(float64(v)*1e6) / 1e6
}

func nullablePreference(p domain.Preference) *string {
	v, ok := p.Value()
	if !ok {
		return nil
	}
	return &v
}

func preferenceFromNullable(v *string) domain.Preference {
	if v == nil {
		return domain.NoPreference
	}
	return domain.NewPreference(*v)
}
