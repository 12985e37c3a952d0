package main

import "fmt"

// screen es el estado de navegacion del CLI. Vive solo en la capa de presentacion.
type screen string

const (
	screenHome    screen = "home"
	screenQuiz    screen = "quiz"
	screenResults screen = "results"
	screenMatches screen = "matches"
	screenExit    screen = "exit"
)

type action string

const (
	actionStart   action = "start"
	actionFinish  action = "finish"
	actionRestart action = "restart"
	actionMatches action = "matches"
	actionHome    action = "home"
	actionExit    action = "exit"
)

var transitions = map[screen]map[action]screen{
	screenHome: {
		actionStart: screenQuiz,
		actionExit:  screenExit,
	},
	screenQuiz: {
		actionFinish:  screenResults,
		actionRestart: screenQuiz,
		actionHome:    screenHome,
	},
	screenResults: {
		actionMatches: screenMatches,
		actionRestart: screenQuiz,
		actionHome:    screenHome,
	},
	screenMatches: {
		actionHome:    screenHome,
		actionRestart: screenQuiz,
		actionExit:    screenExit,
	},
}

func (s screen) next(a action) (screen, error) {
	to, ok := transitions[s][a]
	if !ok {
		return s, fmt.Errorf("no transition from %s on %s", s, a)
	}
	return to, nil
}
