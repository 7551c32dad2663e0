package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dev-by-yash/FeudExe/internal/game"
)

// PostgresStore backs the collaborator contract with Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// LoadTeams reads the seeded team slots for a game code.
func (s *PostgresStore) LoadTeams(ctx context.Context, code game.RoomID) ([]TeamSeed, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT slot, name
        FROM game_teams
        WHERE game_code = $1
        ORDER BY slot`,
		code.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load teams: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var seeds []TeamSeed
	for rows.Next() {
		var slot, name string
		if err := rows.Scan(&slot, &name); err != nil {
			return nil, fmt.Errorf("%w: scan team row: %v", ErrUnavailable, err)
		}
		seeds = append(seeds, TeamSeed{Team: game.TeamID(slot), Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load teams: %v", ErrUnavailable, err)
	}
	return seeds, nil
}

// LoadQuestionSequence reads the ordered question set for a game code.
// Answers are stored as a JSONB array of {text, points}.
func (s *PostgresStore) LoadQuestionSequence(ctx context.Context, code game.RoomID) ([]game.Question, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT q.text, q.answers
        FROM game_questions gq
        JOIN questions q ON q.id = gq.question_id
        WHERE gq.game_code = $1
        ORDER BY gq.position`,
		code.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load questions: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var questions []game.Question
	for rows.Next() {
		var (
			text    string
			answers []byte
		)
		if err := rows.Scan(&text, &answers); err != nil {
			return nil, fmt.Errorf("%w: scan question row: %v", ErrUnavailable, err)
		}
		q := game.Question{Text: text}
		if err := json.Unmarshal(answers, &q.Answers); err != nil {
			return nil, fmt.Errorf("%w: decode answers: %v", ErrUnavailable, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load questions: %v", ErrUnavailable, err)
	}
	return questions, nil
}

// CommitFinalScores upserts the final standings for a completed game.
func (s *PostgresStore) CommitFinalScores(ctx context.Context, code game.RoomID, scores []game.FinalScore) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin commit: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	for _, fs := range scores {
		if _, err := tx.Exec(ctx, `
            INSERT INTO game_results (game_code, slot, team_name, final_score, recorded_at)
            VALUES ($1, $2, $3, $4, now())
            ON CONFLICT (game_code, slot)
            DO UPDATE SET team_name = EXCLUDED.team_name,
                          final_score = EXCLUDED.final_score,
                          recorded_at = EXCLUDED.recorded_at`,
			code.String(), string(fs.Team), fs.Name, fs.Score,
		); err != nil {
			return fmt.Errorf("%w: write result for team %s: %v", ErrUnavailable, fs.Team, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit results: %v", ErrUnavailable, err)
	}
	return nil
}

// IsUnavailable reports whether err came from the store backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
