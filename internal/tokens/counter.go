// Package tokens counts language-model tokens in serialized output.
// The counter is an oracle the compactor consults between reduction
// passes; it never inspects the graph itself.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter maps a string to a token count compatible with the target
// model's tokenizer.
type Counter interface {
	// Count returns the number of tokens in text
	Count(text string) int
	// Name identifies the counting scheme for diagnostics
	Name() string
}

type tiktokenCounter struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktoken creates a Counter backed by the named tiktoken encoding
// (cl100k_base matches GPT-4-class models).
func NewTiktoken(encoding string) (Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("initializing %s encoding: %w", encoding, err)
	}
	return &tiktokenCounter{encoding: encoding, enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *tiktokenCounter) Name() string {
	return "tiktoken/" + c.encoding
}

type heuristicCounter struct{}

// NewHeuristic creates a Counter using the rough 4-characters-per-token
// approximation. Used when the tokenizer data is unavailable, e.g.
// offline runs.
func NewHeuristic() Counter {
	return heuristicCounter{}
}

func (heuristicCounter) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len([]rune(text)) / 4
	if n == 0 {
		return 1
	}
	return n
}

func (heuristicCounter) Name() string {
	return "heuristic/chars4"
}
