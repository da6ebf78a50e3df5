/*
Package cli implements the capsearch command-line interface.

Each command builds its collaborators the same way: configuration from
~/.capsearch/config.yaml (defaults if absent), the registry from
~/.capsearch/registry.db, and an in-memory full-text index rebuilt from
the active corpus at startup.
*/
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/khanglvm/capsearch/internal/config"
	"github.com/khanglvm/capsearch/internal/embed"
	"github.com/khanglvm/capsearch/internal/index"
	"github.com/khanglvm/capsearch/internal/registry"
	"github.com/khanglvm/capsearch/internal/search"
)

// deps bundles the wired collaborators behind one engine.
type deps struct {
	cfg    *config.Config
	store  *registry.SQLiteStore
	engine *search.Engine
}

// buildDeps wires the engine the standard way. The full-text index and
// the embedding backend are both optional: failures are logged and the
// engine degrades per its fallback paths.
func buildDeps() (*deps, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store := registry.DefaultStore()
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to init registry: %w", err)
	}

	opts := []search.Option{search.WithTraceReader(store)}

	actives, err := store.ListActive("")
	if err == nil && len(actives) > 0 {
		idx, idxErr := index.NewMemOnly()
		if idxErr == nil {
			if idxErr = idx.IndexCapabilities(actives); idxErr == nil {
				opts = append(opts, search.WithIndex(idx))
			}
		}
		if idxErr != nil {
			log.Printf("Warning: full-text index unavailable: %v", idxErr)
		}
	}

	if url := os.Getenv("CAPSEARCH_EMBED_URL"); url != "" {
		model := os.Getenv("CAPSEARCH_EMBED_MODEL")
		if model == "" {
			model = "nomic-embed-text"
		}
		opts = append(opts, search.WithEmbedder(embed.NewHTTPEmbedder(url, model, cfg.EmbedTimeout)))
	}

	return &deps{
		cfg:    cfg,
		store:  store,
		engine: search.New(cfg, store, opts...),
	}, nil
}

func (d *deps) close() {
	if err := d.store.Close(); err != nil {
		log.Printf("Warning: failed to close registry: %v", err)
	}
}
