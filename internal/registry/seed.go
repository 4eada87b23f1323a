package registry

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-agent-registry/internal/config"
	"github.com/feral-file/ff-agent-registry/internal/logger"
	"github.com/feral-file/ff-agent-registry/internal/store"
)

// SeedSources registers the configured sources. Existing sources keep their cursor.
func SeedSources(ctx context.Context, st store.Store, sources []config.SourceConfig) error {
	for _, src := range sources {
		source, err := st.UpsertSource(ctx, store.UpsertSourceInput{
			Type:       src.Type,
			Network:    src.Network,
			APIKey:     optional(src.APIKey),
			Identifier: optional(src.Identifier),
			URL:        optional(src.URL),
			Note:       optional(src.Note),
		})
		if err != nil {
			return fmt.Errorf("failed to seed source %s: %w", src.Identifier, err)
		}

		logger.InfoCtx(ctx, "Registry source seeded",
			zap.String("source_id", source.ID),
			zap.String("network", string(source.Network)),
			zap.Stringp("identifier", source.Identifier),
		)
	}

	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
