// Package recommend answers free-form food questions against a menu. It
// never fails: any problem with the generator turns into a fixed message.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"go_trial/cravewave/models"

	"github.com/rs/zerolog"
)

const (
	MsgUnavailable = "AI service is unavailable (Missing API Key)."
	MsgFailed      = "I'm having trouble thinking of food right now. Please try again later."
	MsgNoMatch     = "I couldn't find a good match right now."
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Recommender struct {
	gen Generator
	log zerolog.Logger
}

// New returns a Recommender. A nil gen means no generator is configured.
func New(gen Generator, log zerolog.Logger) *Recommender {
	if g, ok := gen.(*Gemini); ok && g == nil {
		gen = nil
	}
	return &Recommender{gen: gen, log: log.With().Str("module", "recommend").Logger()}
}

func (r *Recommender) Recommend(ctx context.Context, query string, menu []models.MenuItem) string {
	if r == nil || r.gen == nil {
		return MsgUnavailable
	}
	answer, err := r.gen.Generate(ctx, Prompt(query, menu))
	if err != nil {
		r.log.Error().Err(err).Str("query", query).Msg("recommendation failed")
		return MsgFailed
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return MsgNoMatch
	}
	return answer
}

// Prompt builds the instruction sent to the generator. Unavailable items are
// left out.
func Prompt(query string, menu []models.MenuItem) string {
	var lines []string
	for _, it := range menu {
		if !it.Available {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s): $%s - %s", it.Name, it.Category, it.Price.StringFixed(2), it.Description))
	}

	var b strings.Builder
	b.WriteString("You are a helpful culinary assistant for a food delivery app called CraveWave.\n\n")
	fmt.Fprintf(&b, "The user asks: %q\n\n", strings.TrimSpace(query))
	b.WriteString("Here is the current available menu data:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPlease recommend 1-2 specific items from the menu that match the user's request.\n")
	b.WriteString("Explain why you picked them. Be brief (max 3 sentences).\n")
	b.WriteString("If nothing matches, suggest the closest alternative.\n")
	b.WriteString("Do not format as markdown. Plain text only.\n")
	return b.String()
}
