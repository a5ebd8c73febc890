// Package corpus loads the precomputed passage corpus from disk.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/printerdocs/manualchat/internal/domain"
)

// Load reads a corpus file: a JSON array of passages with precomputed
// embeddings. The corpus is loaded once at startup and never mutated.
// A ragged corpus (passages with differing embedding dimensions) is a
// configuration error, not something to tolerate per request.
func Load(path string) ([]domain.Passage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var passages []domain.Passage
	if err := json.Unmarshal(raw, &passages); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", path, err)
	}

	if len(passages) == 0 {
		return nil, fmt.Errorf("corpus file %s contains no passages", path)
	}

	dim := len(passages[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("corpus passage %d has an empty embedding", passages[0].ID)
	}
	for _, p := range passages {
		if len(p.Embedding) != dim {
			return nil, fmt.Errorf("corpus passage %d has dimension %d, expected %d",
				p.ID, len(p.Embedding), dim)
		}
	}

	return passages, nil
}
