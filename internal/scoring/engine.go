package scoring

import (
	"errors"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// Invalid transitions are no-ops: the session is left untouched and the error
// is reported to the originating caller only, never broadcast.
var (
	ErrQuestionNotActive  = errors.New("question not active")
	ErrAlreadyRevealed    = errors.New("answer already revealed")
	ErrInvalidAnswerIndex = errors.New("invalid answer index")
	ErrStealUnavailable   = errors.New("steal attempt not available")
	ErrInvalidRound       = errors.New("invalid round")
	ErrInvalidTeam        = errors.New("invalid team")
)

// Engine applies the game's point rules to its owning session. It never
// touches anything outside that session, and callers must serialize access;
// the coordinator's session worker is the single caller in production.
type Engine struct {
	sess *game.Session
}

// NewEngine returns an engine bound to sess.
func NewEngine(sess *game.Session) *Engine {
	return &Engine{sess: sess}
}

// StrikeResult reports the outcome of a wrong answer.
type StrikeResult struct {
	Team TeamStrikes `json:"team"`
	// StealOpportunity is set when the strike cap was reached and control
	// passed to the other team.
	StealOpportunity bool        `json:"steal_opportunity"`
	ControlTeam      game.TeamID `json:"control_team"`
}

// TeamStrikes names a team and the strike count that its wrong answer
// produced. When the cap is hit the session's stored strikes reset to zero,
// so the triggering count is carried here for display.
type TeamStrikes struct {
	ID      game.TeamID `json:"id"`
	Strikes int         `json:"strikes"`
}

// StealResult reports the outcome of the question's single steal attempt.
type StealResult struct {
	Team       game.TeamID `json:"team"`
	Success    bool        `json:"success"`
	ScoreDelta int         `json:"score_delta"`
}

// StartNewQuestion resets per-question state and activates the board.
func (e *Engine) StartNewQuestion(answers []game.Answer, startingTeam game.TeamID) error {
	if !startingTeam.Valid() {
		return ErrInvalidTeam
	}
	s := e.sess
	s.CurrentTeam = startingTeam
	s.Team(game.TeamA).Strikes = 0
	s.Team(game.TeamB).Strikes = 0
	s.ResetStreak()
	s.BuzzerBonusTeam = game.TeamNone
	s.RevealedAnswers = make([]bool, len(answers))
	s.StealUsed = false
	s.QuestionActive = true
	return nil
}

// GrantBuzzerBonus marks team as holding a pending buzzer bonus, consumed by
// its first correct answer. Called when that team wins the buzzer race.
func (e *Engine) GrantBuzzerBonus(team game.TeamID) {
	if !team.Valid() {
		return
	}
	e.sess.CurrentTeam = team
	e.sess.BuzzerBonusTeam = team
}

// ProcessCorrectAnswer reveals an answer and credits the scoring team.
// The returned calculation explains every component of the credited delta.
func (e *Engine) ProcessCorrectAnswer(answerIndex, basePoints int, team game.TeamID) (*game.ScoreCalculation, error) {
	s := e.sess
	if !s.QuestionActive {
		return nil, ErrQuestionNotActive
	}
	if !team.Valid() {
		return nil, ErrInvalidTeam
	}
	if answerIndex < 0 || answerIndex >= len(s.RevealedAnswers) {
		return nil, ErrInvalidAnswerIndex
	}
	if s.RevealedAnswers[answerIndex] {
		return nil, ErrAlreadyRevealed
	}

	// Advance the streak first: the answer that makes it N consecutive is
	// scored at the N-entry of the multiplier table.
	if s.Streak.Team == team {
		s.Streak.Count++
		if s.Streak.Count > maxStreakCount {
			s.Streak.Count = maxStreakCount
		}
	} else {
		s.Streak = game.Streak{Team: team, Count: 1}
	}

	calc := &game.ScoreCalculation{
		BasePoints:       basePoints,
		RoundMultiplier:  RoundMultiplier(s.Round),
		StreakMultiplier: StreakMultiplier(s.Streak.Count),
	}

	score := basePoints * calc.RoundMultiplier * calc.StreakMultiplier

	// Buzzer bonus applies once, to the first correct answer by the team
	// that won the race, and lapses on any other reveal.
	if s.BuzzerBonusTeam == team {
		calc.BuzzerBonus = buzzerBonus
		score += buzzerBonus * calc.RoundMultiplier
	}
	s.BuzzerBonusTeam = game.TeamNone

	s.RevealedAnswers[answerIndex] = true
	calc.TotalScore = score

	if s.AllRevealed() && !s.StealUsed {
		calc.PerfectBoardBonus = perfectBoardBonus * calc.RoundMultiplier
		calc.TotalScore += calc.PerfectBoardBonus
	}

	s.Team(team).Score += calc.TotalScore
	return calc, nil
}

// ProcessWrongAnswer adds a strike, resets the streak, and clears any pending
// buzzer bonus. Hitting the strike cap passes control to the other team and
// opens the steal window; the struck-out team's stored strikes reset to zero
// so their next independent board starts clean.
func (e *Engine) ProcessWrongAnswer(team game.TeamID) (*StrikeResult, error) {
	s := e.sess
	if !s.QuestionActive {
		return nil, ErrQuestionNotActive
	}
	if !team.Valid() {
		return nil, ErrInvalidTeam
	}

	t := s.Team(team)
	if t.Strikes < game.MaxStrikes {
		t.Strikes++
	}
	s.ResetStreak()
	s.BuzzerBonusTeam = game.TeamNone

	res := &StrikeResult{
		Team:        TeamStrikes{ID: team, Strikes: t.Strikes},
		ControlTeam: s.CurrentTeam,
	}

	if t.Strikes >= game.MaxStrikes {
		other := team.Other()
		s.CurrentTeam = other
		t.Strikes = 0
		res.StealOpportunity = true
		res.ControlTeam = other
	}
	return res, nil
}

// ProcessStealAttempt resolves the question's single permitted steal.
// remainingPointsSum is the sum of all still-unrevealed answer points,
// including the chosen answer. Either outcome consumes the steal and resolves
// the question.
func (e *Engine) ProcessStealAttempt(isCorrect bool, answerIndex, remainingPointsSum int) (*StealResult, error) {
	s := e.sess
	if !s.QuestionActive || s.StealUsed {
		return nil, ErrStealUnavailable
	}

	team := s.CurrentTeam
	res := &StealResult{Team: team}

	if isCorrect {
		if answerIndex < 0 || answerIndex >= len(s.RevealedAnswers) {
			return nil, ErrInvalidAnswerIndex
		}
		if s.RevealedAnswers[answerIndex] {
			return nil, ErrAlreadyRevealed
		}
		s.StealUsed = true
		s.RevealedAnswers[answerIndex] = true
		res.Success = true
		res.ScoreDelta = (remainingPointsSum + stealBonus) * RoundMultiplier(s.Round)
		s.Team(team).Score += res.ScoreDelta
	} else {
		s.StealUsed = true
	}

	e.EndQuestion()
	return res, nil
}

// EndQuestion deactivates the board and clears the streak.
func (e *Engine) EndQuestion() {
	e.sess.QuestionActive = false
	e.sess.ResetStreak()
}

// StartNewRound moves the session into round n. Rounds never move backwards.
func (e *Engine) StartNewRound(n int) error {
	if n < 1 || n > game.MaxRound || n < e.sess.Round {
		return ErrInvalidRound
	}
	e.sess.Round = n
	e.sess.ResetStreak()
	return nil
}

// SwitchControl flips the current-team pointer and resets the streak.
func (e *Engine) SwitchControl() {
	e.sess.CurrentTeam = e.sess.CurrentTeam.Other()
	e.sess.ResetStreak()
}
