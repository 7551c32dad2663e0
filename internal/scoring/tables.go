package scoring

// Game-balance constants. These values are the game's identity: changing any
// of them changes what a "fair" score is, so they are fixed tables rather
// than configuration.

// roundMultipliers maps round number (1-3) to its score multiplier.
var roundMultipliers = map[int]int{
	1: 1,
	2: 2,
	3: 3,
}

// streakMultipliers maps consecutive-correct count to its multiplier. Counts
// past the last entry clamp to it.
var streakMultipliers = map[int]int{
	1: 1,
	2: 10,
	3: 20,
	4: 30,
	5: 40,
	6: 50,
}

// maxStreakCount is the highest key in streakMultipliers; the streak counter
// never grows past it.
const maxStreakCount = 6

const (
	// buzzerBonus is added (times the round multiplier) to the first correct
	// answer by the team that won the buzzer race.
	buzzerBonus = 10
	// stealBonus is added to the remaining board points on a successful steal.
	stealBonus = 20
	// perfectBoardBonus rewards clearing a board without a steal.
	perfectBoardBonus = 50
)

// RoundMultiplier returns the multiplier for a round, defaulting to 1 for
// out-of-table values.
func RoundMultiplier(round int) int {
	if m, ok := roundMultipliers[round]; ok {
		return m
	}
	return 1
}

// StreakMultiplier returns the multiplier for a streak count, clamped to the
// table's last entry.
func StreakMultiplier(count int) int {
	if count <= 0 {
		return 1
	}
	if count > maxStreakCount {
		count = maxStreakCount
	}
	if m, ok := streakMultipliers[count]; ok {
		return m
	}
	return 1
}
