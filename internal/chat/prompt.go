package chat

import (
	"fmt"
	"strings"

	"github.com/printerdocs/manualchat/internal/domain"
)

// groundingDirective restricts the model to the supplied manual excerpts.
// It is fixed server-side; clients cannot alter the grounding policy.
const groundingDirective = `You are an AI assistant for 3D printer manuals.
Answer using only the manual excerpts provided below.

- If the excerpts do not cover the question, do not guess; reply "The manual does not cover this."
- Always end your answer with the [source N] markers for the excerpts you used.`

// buildContext renders ranked passages as labeled excerpt blocks and the
// matching citation list. Labels are 1-based ranks, not corpus IDs, so
// the model's [source N] markers line up with the order excerpts appear.
func buildContext(ranked []domain.ScoredPassage) (string, []domain.Citation) {
	blocks := make([]string, len(ranked))
	citations := make([]domain.Citation, len(ranked))
	for i, sp := range ranked {
		blocks[i] = fmt.Sprintf("[source %d] (%s)\n%s", i+1, sp.Manual, sp.Text)
		citations[i] = domain.Citation{
			ID:      sp.ID,
			Manual:  sp.Manual,
			Section: sp.Section,
		}
	}
	return strings.Join(blocks, "\n\n"), citations
}

// buildUserPrompt combines the excerpt context with the verbatim question.
func buildUserPrompt(context, question string) string {
	return fmt.Sprintf("[Manual excerpts]\n%s\n\n[Question]\n%s", context, question)
}
