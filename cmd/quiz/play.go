package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astramate/internal/db"
	"astramate/internal/domain"
	"astramate/internal/repository"
	"astramate/internal/service"
)

const (
	itemBack = "Back"
	itemNext = "Next"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take the quiz and see suggested matches",
	Run: func(cmd *cobra.Command, _ []string) {
		play(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func play(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger := setup()
	defer logger.Sync()

	var candidates repository.CandidateRepository = repository.NewStaticCandidateRepository(repository.DemoCandidates())
	switch {
	case cfg.DatabaseURL != "":
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		candidates = repository.NewPgCandidateRepository(pool)
	case cfg.CandidatesFile != "":
		list, err := repository.LoadCandidatesFile(cfg.CandidatesFile)
		if err != nil {
			logger.Fatal("load candidates", zap.Error(err))
		}
		candidates = repository.NewStaticCandidateRepository(list)
	}

	p := &player{
		quiz:    service.NewQuizService(service.NewMemorySessionStore(0), logger),
		matches: service.NewMatchService(candidates, service.DefaultScorer, logger),
		choose:  promptSelect,
		out:     os.Stdout,
	}
	if err := p.run(ctx); err != nil {
		logger.Fatal("quiz failed", zap.Error(err))
	}
}

// chooser muestra una lista y devuelve el indice elegido.
type chooser func(label string, items []string) (int, error)

func promptSelect(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	i, _, err := sel.Run()
	return i, err
}

type player struct {
	quiz      *service.QuizService
	matches   *service.MatchService
	choose    chooser
	out       io.Writer
	sessionID string
}

func (p *player) run(ctx context.Context) error {
	current := screenHome
	for current != screenExit {
		var (
			a   action
			err error
		)
		switch current {
		case screenHome:
			a, err = p.home()
		case screenQuiz:
			a, err = p.quizScreen(ctx)
		case screenResults:
			a, err = p.results(ctx)
		case screenMatches:
			a, err = p.matchesScreen(ctx)
		}
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch a {
		case actionStart:
			session, err := p.quiz.Start(ctx)
			if err != nil {
				return err
			}
			p.sessionID = session.ID
		case actionRestart:
			if _, err := p.quiz.Restart(ctx, p.sessionID); err != nil {
				return err
			}
		}

		if current, err = current.next(a); err != nil {
			return err
		}
	}
	return nil
}

func (p *player) home() (action, error) {
	fmt.Fprintln(p.out, "AstraMate: AI matchmaking that aligns the stars and the soul")
	i, err := p.choose("What next?", []string{"Try the quiz", "Exit"})
	if err != nil {
		return "", err
	}
	if i == 0 {
		return actionStart, nil
	}
	return actionExit, nil
}

func (p *player) quizScreen(ctx context.Context) (action, error) {
	for {
		session, err := p.quiz.Get(ctx, p.sessionID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(p.out, "Progress: %d%%\n", session.Progress())

		q, ok := session.Current()
		if !ok {
			fmt.Fprintln(p.out, "You're done!")
			i, err := p.choose("Generate your profile and see suggested matches", []string{"View results", "Restart", itemBack})
			if err != nil {
				return "", err
			}
			switch i {
			case 0:
				return actionFinish, nil
			case 1:
				return actionRestart, nil
			}
			if _, err := p.quiz.Back(ctx, p.sessionID); err != nil {
				return "", err
			}
			continue
		}

		options := answerOptions(q)
		i, err := p.choose(q.Prompt, append(options, itemBack, itemNext))
		if err != nil {
			return "", err
		}
		switch {
		case i < len(options):
			_, err = p.quiz.Answer(ctx, p.sessionID, q.ID, answerValue(q, options[i]))
		case i == len(options):
			_, err = p.quiz.Back(ctx, p.sessionID)
		default:
			_, err = p.quiz.Next(ctx, p.sessionID)
		}
		if err != nil {
			return "", err
		}
	}
}

func (p *player) results(ctx context.Context) (action, error) {
	profile, err := p.quiz.Profile(ctx, p.sessionID)
	if err != nil {
		return "", err
	}
	renderProfile(p.out, profile)

	i, err := p.choose("What next?", []string{"See suggested matches", "Restart quiz", "Home"})
	if err != nil {
		return "", err
	}
	return []action{actionMatches, actionRestart, actionHome}[i], nil
}

func (p *player) matchesScreen(ctx context.Context) (action, error) {
	profile, err := p.quiz.Profile(ctx, p.sessionID)
	if err != nil {
		return "", err
	}
	results, err := p.matches.Match(ctx, profile)
	if err != nil {
		return "", err
	}
	renderMatches(p.out, results)

	i, err := p.choose("What next?", []string{"Home", "Restart quiz", "Exit"})
	if err != nil {
		return "", err
	}
	return []action{actionHome, actionRestart, actionExit}[i], nil
}

func answerOptions(q domain.Question) []string {
	if q.Kind == domain.QuestionKindLikert {
		out := make([]string, 0, domain.LikertMax-domain.LikertMin+1)
		for v := domain.LikertMin; v <= domain.LikertMax; v++ {
			out = append(out, strconv.Itoa(v))
		}
		return out
	}
	return append([]string(nil), q.Options...)
}

func answerValue(q domain.Question, item string) any {
	if q.Kind == domain.QuestionKindLikert {
		v, _ := strconv.Atoi(item)
		return v
	}
	return item
}

var traitLabels = map[string]string{
	domain.QuestionOpenness:          "Openness",
	domain.QuestionConscientiousness: "Conscientiousness",
	domain.QuestionExtraversion:      "Extraversion",
	domain.QuestionAgreeableness:     "Agreeableness",
	domain.QuestionNeuroticism:       "Neuroticism",
}

func renderProfile(w io.Writer, p domain.Profile) {
	fmt.Fprintln(w, "Your Compatibility Profile")
	pct := p.TraitPercentages()
	for _, key := range domain.TraitKeys {
		fmt.Fprintf(w, "  %-18s %3d%%\n", traitLabels[key], pct[key])
	}
	fmt.Fprintf(w, "  Love Language: %s\n", p.LoveLanguage)
	fmt.Fprintf(w, "  Attachment:    %s\n", p.Attachment)
	fmt.Fprintf(w, "  Family:        %s\n", p.Family)
	fmt.Fprintf(w, "  Relocate:      %s\n", p.Relocate)
}

func renderMatches(w io.Writer, results []domain.MatchResult) {
	fmt.Fprintln(w, "Suggested Matches")
	for _, r := range results {
		c := r.Candidate
		fmt.Fprintf(w, "  %s  %d%% match\n", c.Name, r.Percent)
		fmt.Fprintf(w, "    %s\n", strings.Join([]string{"Age " + strconv.Itoa(c.Age), c.Role, c.City}, " • "))
		fmt.Fprintf(w, "    Love Language: %s • Attachment: %s\n", c.Profile.LoveLanguage, c.Profile.Attachment)
	}
}
