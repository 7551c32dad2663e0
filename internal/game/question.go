package game

// Answer is one survey answer on the board.
type Answer struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// Question is one board: a prompt and its ranked answers. The question
// sequence is fixed at session bootstrap and never mutated.
type Question struct {
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}
