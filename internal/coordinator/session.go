package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dev-by-yash/FeudExe/internal/buzzer"
	"github.com/dev-by-yash/FeudExe/internal/events"
	"github.com/dev-by-yash/FeudExe/internal/game"
	"github.com/dev-by-yash/FeudExe/internal/scoring"
)

var errSessionClosed = errors.New("session closed")

// session bundles one GameSession with its engine and arbitrator, plus the
// mailbox that serializes every mutation. The worker goroutine is the only
// code that touches state after construction.
type session struct {
	code  game.RoomID
	coord *Coordinator

	state  *game.Session
	engine *scoring.Engine
	arb    *buzzer.Arbitrator

	mailbox chan *events.Inbound
	done    chan struct{}
	once    sync.Once

	// lastActivityNano is read by the registry sweep without touching the
	// worker.
	lastActivityNano atomic.Int64
}

func newSession(code game.RoomID, coord *Coordinator) *session {
	now := coord.clock.Now()
	state := game.NewSession(code, now)
	s := &session{
		code:    code,
		coord:   coord,
		state:   state,
		engine:  scoring.NewEngine(state),
		arb:     buzzer.NewArbitrator(state, coord.clock),
		mailbox: make(chan *events.Inbound, coord.config.MailboxSize),
		done:    make(chan struct{}),
	}
	s.lastActivityNano.Store(now.UnixNano())
	return s
}

func (s *session) lastActivity() time.Time {
	return time.Unix(0, s.lastActivityNano.Load())
}

// enqueue hands a command to the worker. It blocks only while the mailbox is
// full and the session still alive.
func (s *session) enqueue(ctx context.Context, in *events.Inbound) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.mailbox <- in:
		return nil
	case <-s.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop shuts the worker down. Pending mailbox commands are discarded; evicted
// sessions owe nobody anything.
func (s *session) stop() {
	s.once.Do(func() { close(s.done) })
}

// run bootstraps the session from the store and then applies commands one at
// a time until stopped. This loop is the serialization point the whole
// design leans on: no two mutations of one GameSession ever interleave.
func (s *session) run(ctx context.Context) {
	s.bootstrap(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case in := <-s.mailbox:
			s.apply(in)
		}
	}
}

// bootstrap seeds team names and the question sequence from the store. Any
// store failure degrades to defaults; gameplay never blocks on persistence.
func (s *session) bootstrap(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, s.coord.config.BootstrapTimeout)
	defer cancel()

	seeds, err := s.coord.store.LoadTeams(loadCtx, s.code)
	if err != nil {
		log.Warn().Err(err).Str("game_code", s.code.String()).Msg("team bootstrap failed, using defaults")
	}
	for _, seed := range seeds {
		if t := s.state.Team(seed.Team); t != nil && seed.Name != "" {
			t.Name = seed.Name
		}
	}

	questions, err := s.coord.store.LoadQuestionSequence(loadCtx, s.code)
	if err != nil {
		log.Warn().Err(err).Str("game_code", s.code.String()).Msg("question bootstrap failed, starting empty")
	}
	s.state.Questions = questions

	// Activate the first board so the host can reveal immediately.
	if q := s.state.CurrentQuestion(); q != nil {
		if err := s.engine.StartNewQuestion(q.Answers, game.TeamA); err != nil {
			log.Error().Err(err).Str("game_code", s.code.String()).Msg("activate first question")
		}
	}

	log.Info().
		Str("game_code", s.code.String()).
		Int("questions", len(questions)).
		Int("team_seeds", len(seeds)).
		Msg("session bootstrapped")
}

// apply executes one command inside the serialized critical section.
func (s *session) apply(in *events.Inbound) {
	s.lastActivityNano.Store(s.coord.clock.Now().UnixNano())

	switch in.Type {
	case events.InboundJoinRoom:
		s.handleJoin(in)
	case events.InboundLeaveRoom:
		s.handleLeave(in)
	case events.InboundBuzzerEnable:
		s.handleBuzzerEnable(in)
	case events.InboundBuzzerReset:
		s.handleBuzzerReset()
	case events.InboundBuzzerAttempt:
		s.handleBuzzerAttempt(in)
	case events.InboundRevealAnswer:
		s.handleReveal(in)
	case events.InboundStealAttempt:
		s.handleSteal(in)
	case events.InboundAdvanceQuestion:
		s.handleAdvanceQuestion(in)
	case events.InboundAdvanceRound:
		s.handleAdvanceRound(in)
	case events.InboundSetTeamName:
		s.handleSetTeamName(in)
	default:
		log.Warn().Str("command", string(in.Type)).Msg("unhandled command type")
	}
}

// broadcast delivers an event to the whole room and mirrors it to the relay.
func (s *session) broadcast(typ events.EventType, payload any) {
	ev := s.coord.newEvent(s.code, typ, payload)
	if ev == nil {
		return
	}
	s.coord.broadcaster.Broadcast(s.code, ev)
	if s.coord.relay != nil {
		s.coord.relay.Publish(s.coord.ctx, ev)
	}
}

// reply delivers an event to the originating connection only. Private
// replies are not relayed.
func (s *session) reply(origin string, typ events.EventType, payload any) {
	ev := s.coord.newEvent(s.code, typ, payload)
	if ev == nil {
		return
	}
	s.coord.broadcaster.SendTo(s.code, origin, ev)
}

// reject reports an invalid transition back to the caller. Invalid
// transitions are no-ops by design and never broadcast.
func (s *session) reject(in *events.Inbound, err error) {
	s.reply(in.Origin, events.EventCommandRejected, events.CommandRejectedPayload{
		Command: in.Type,
		Reason:  err.Error(),
	})
}

func (s *session) handleJoin(in *events.Inbound) {
	join := in.Join
	if join == nil {
		join = &events.JoinPayload{Role: events.RoleDisplay}
	}

	if join.Role == events.RoleBuzzer && join.Team.Valid() && join.Player != "" {
		t := s.state.Team(join.Team)
		t.Players = append(t.Players, game.Player{
			Name:         join.Player,
			ConnectionID: in.Origin,
			JoinedAt:     s.coord.clock.Now(),
		})
	}

	s.broadcast(events.EventPlayerJoined, events.PlayerJoinedPayload{
		ConnectionID: in.Origin,
		Role:         join.Role,
		Team:         join.Team,
		Player:       join.Player,
	})

	// Snapshot after the membership broadcast: it reflects everything the
	// room has seen so far, including this join.
	s.reply(in.Origin, events.EventSnapshot, s.state.Snapshot(s.coord.clock.Now()))
}

func (s *session) handleLeave(in *events.Inbound) {
	for _, id := range []game.TeamID{game.TeamA, game.TeamB} {
		t := s.state.Team(id)
		for i, p := range t.Players {
			if p.ConnectionID == in.Origin {
				t.Players = append(t.Players[:i], t.Players[i+1:]...)
				break
			}
		}
	}
}

func (s *session) handleBuzzerEnable(in *events.Inbound) {
	epoch, err := s.arb.Enable()
	if err != nil {
		s.reject(in, err)
		return
	}
	s.broadcast(events.EventBuzzerReady, events.BuzzerReadyPayload{Epoch: epoch})
}

func (s *session) handleBuzzerReset() {
	s.arb.Reset()
	s.broadcast(events.EventBuzzerReset, nil)
}

func (s *session) handleBuzzerAttempt(in *events.Inbound) {
	winner, err := s.arb.AttemptBuzz(buzzer.Attempt{
		Team:            in.Buzz.Team,
		Player:          in.Buzz.Player,
		ConnectionID:    in.Origin,
		Epoch:           in.Buzz.Epoch,
		ClientTimestamp: in.Buzz.ClientTimestamp,
	})

	var tooLate *buzzer.TooLateError
	switch {
	case err == nil:
		s.engine.GrantBuzzerBonus(winner.Team)
		s.broadcast(events.EventBuzzerLocked, events.BuzzerLockedPayload{Winner: *winner})
	case errors.As(err, &tooLate):
		s.reply(in.Origin, events.EventBuzzTooLate, events.BuzzTooLatePayload{Winner: *tooLate.Winner})
	default:
		s.reject(in, err)
	}
}

func (s *session) handleReveal(in *events.Inbound) {
	team := in.Reveal.Team
	if !team.Valid() {
		team = s.state.CurrentTeam
	}

	if !in.Reveal.IsCorrect {
		res, err := s.engine.ProcessWrongAnswer(team)
		if err != nil {
			s.reject(in, err)
			return
		}
		s.broadcast(events.EventStrikeAdded, events.StrikeAddedPayload{
			Team:             res.Team.ID,
			StrikeCount:      res.Team.Strikes,
			StealOpportunity: res.StealOpportunity,
			ControlTeam:      res.ControlTeam,
		})
		return
	}

	q := s.state.CurrentQuestion()
	if q == nil {
		s.reject(in, scoring.ErrQuestionNotActive)
		return
	}
	if in.Reveal.Index < 0 || in.Reveal.Index >= len(q.Answers) {
		s.reject(in, scoring.ErrInvalidAnswerIndex)
		return
	}

	answer := q.Answers[in.Reveal.Index]
	calc, err := s.engine.ProcessCorrectAnswer(in.Reveal.Index, answer.Points, team)
	if err != nil {
		s.reject(in, err)
		return
	}

	s.broadcast(events.EventAnswerRevealed, events.AnswerRevealedPayload{
		Index:       in.Reveal.Index,
		Answer:      answer,
		Team:        team,
		Calculation: *calc,
		TeamScore:   s.state.Team(team).Score,
		Streak:      s.state.Streak,
	})
}

func (s *session) handleSteal(in *events.Inbound) {
	remaining := s.state.RemainingPoints()
	res, err := s.engine.ProcessStealAttempt(in.Steal.IsCorrect, in.Steal.Index, remaining)
	if err != nil {
		s.reject(in, err)
		return
	}
	s.broadcast(events.EventStealResolved, events.StealResolvedPayload{
		Team:       res.Team,
		Success:    res.Success,
		ScoreDelta: res.ScoreDelta,
		TeamScore:  s.state.Team(res.Team).Score,
	})
}

func (s *session) handleAdvanceQuestion(in *events.Inbound) {
	if s.state.Completed {
		s.reject(in, ErrGameCompleted)
		return
	}
	if len(s.state.Questions) == 0 {
		s.reject(in, scoring.ErrQuestionNotActive)
		return
	}

	s.engine.EndQuestion()
	s.arb.Reset()

	next := s.state.CurrentQuestionIndex + 1
	if next >= len(s.state.Questions) {
		s.complete()
		return
	}

	s.state.CurrentQuestionIndex = next

	// Rounds follow the question index but never move backwards past a
	// manual host advance.
	if auto := game.RoundForQuestion(next); auto > s.state.Round {
		s.state.Round = auto
		s.broadcast(events.EventRoundAdvanced, events.RoundAdvancedPayload{
			Round:      auto,
			Multiplier: scoring.RoundMultiplier(auto),
		})
	}

	q := s.state.CurrentQuestion()
	if err := s.engine.StartNewQuestion(q.Answers, s.state.CurrentTeam); err != nil {
		s.reject(in, err)
		return
	}

	s.broadcast(events.EventQuestionAdvanced, events.QuestionAdvancedPayload{
		Index: next,
		Round: s.state.Round,
		Question: &game.QuestionSnapshot{
			Index:   next,
			Text:    q.Text,
			Answers: append([]game.Answer(nil), q.Answers...),
		},
	})
	s.broadcast(events.EventBuzzerReset, nil)
}

// complete finishes the game: final standings go to the room immediately and
// to the store asynchronously.
func (s *session) complete() {
	s.state.Completed = true
	scores := s.state.FinalScores()
	s.broadcast(events.EventGameCompleted, events.GameCompletedPayload{Scores: scores})
	go s.coord.commitFinalScores(s.code, scores)
}

func (s *session) handleAdvanceRound(in *events.Inbound) {
	if err := s.engine.StartNewRound(in.Round.Round); err != nil {
		s.reject(in, err)
		return
	}
	s.broadcast(events.EventRoundAdvanced, events.RoundAdvancedPayload{
		Round:      s.state.Round,
		Multiplier: scoring.RoundMultiplier(s.state.Round),
	})
}

func (s *session) handleSetTeamName(in *events.Inbound) {
	if !in.Team.Team.Valid() || in.Team.Name == "" {
		s.reject(in, scoring.ErrInvalidTeam)
		return
	}
	t := s.state.Team(in.Team.Team)
	t.Name = in.Team.Name

	s.broadcast(events.EventTeamUpdated, events.TeamUpdatedPayload{
		Team: in.Team.Team,
		Name: in.Team.Name,
		Info: game.TeamSnapshot{
			Name:    t.Name,
			Score:   t.Score,
			Strikes: t.Strikes,
			Players: append([]game.Player(nil), t.Players...),
		},
	})
}
