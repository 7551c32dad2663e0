package game

// ScoreCalculation explains one scoring decision. It is broadcast alongside
// the reveal so every client can show the same breakdown; the session itself
// retains only the resulting score delta.
type ScoreCalculation struct {
	BasePoints        int `json:"base_points"`
	RoundMultiplier   int `json:"round_multiplier"`
	StreakMultiplier  int `json:"streak_multiplier"`
	BuzzerBonus       int `json:"buzzer_bonus"`
	StealBonus        int `json:"steal_bonus"`
	PerfectBoardBonus int `json:"perfect_board_bonus"`
	TotalScore        int `json:"total_score"`
}
