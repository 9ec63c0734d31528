package conversation

import (
	"math"
	"unicode/utf8"
)

// tokensPerChar is the deterministic chars-per-token approximation the rest of
// the system is calibrated against. Not a real tokenizer on purpose.
const tokensPerChar = 4.5

// CountTokens estimates the token cost of a text as ceil(characters / 4.5).
func CountTokens(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / tokensPerChar))
}

// messagesTokens sums the estimated token cost of a message sequence.
func messagesTokens(msgs []entry) int {
	total := 0
	for _, m := range msgs {
		total += m.tokens
	}
	return total
}
