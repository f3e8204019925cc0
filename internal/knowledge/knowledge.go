// Package knowledge implements the free-text fallback lookup used when no
// menu transition matches: a query goes in, an answer/confidence pair comes
// out.
package knowledge

import (
	"context"

	"github.com/VidaNova/AcolheBot/internal/models"
)

// Service answers a free-text question with a confidence in [0, 1].
// A zero-value answer (empty text) means "unknown".
type Service interface {
	Answer(ctx context.Context, query string) (models.KnowledgeAnswer, error)
}
