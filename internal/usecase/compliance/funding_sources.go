package compliance

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

type fundingSourceFile struct {
	FundingSources []fundingSourceEntry `toml:"funding_source"`
}

type fundingSourceEntry struct {
	Name             string  `toml:"name"`
	Type             string  `toml:"type"`
	DefaultThreshold float64 `toml:"default_threshold"`
	Subpart          string  `toml:"subpart"`
}

type SeedResult struct {
	Upserted int      `json:"upserted"`
	Names    []string `json:"names"`
}

// SeedFundingSources upserts the funding source reference table from a TOML
// document of [[funding_source]] tables, matching rows by name.
func (s *Service) SeedFundingSources(ctx context.Context, document []byte) (SeedResult, error) {
	if err := s.ready(ctx); err != nil {
		return SeedResult{}, err
	}

	var file fundingSourceFile
	if err := toml.Unmarshal(document, &file); err != nil {
		return SeedResult{}, errs.E(errs.KindInvalidInput, errs.Wrap(err, "decode funding sources"))
	}
	if len(file.FundingSources) == 0 {
		return SeedResult{}, errs.Ef(errs.KindInvalidInput, "no [[funding_source]] entries found")
	}

	sources := make([]ports.FundingSource, 0, len(file.FundingSources))
	names := make([]string, 0, len(file.FundingSources))
	seen := make(map[string]struct{}, len(file.FundingSources))
	for i, entry := range file.FundingSources {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return SeedResult{}, errs.Ef(errs.KindInvalidInput, "funding_source[%d]: name is required", i)
		}
		if _, ok := seen[name]; ok {
			return SeedResult{}, errs.Ef(errs.KindInvalidInput, "funding_source[%d]: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}
		if entry.DefaultThreshold < 0 {
			return SeedResult{}, errs.Ef(errs.KindInvalidInput, "funding_source %q: default_threshold must not be negative", name)
		}
		subpart := ""
		if raw := strings.TrimSpace(entry.Subpart); raw != "" {
			subpart = domain.NormalizeSubpart(raw)
			if subpart == "" {
				return SeedResult{}, errs.Ef(errs.KindInvalidInput, "funding_source %q: unknown subpart %q", name, raw)
			}
		}
		sources = append(sources, ports.FundingSource{
			Name:             name,
			Type:             strings.TrimSpace(entry.Type),
			DefaultThreshold: entry.DefaultThreshold,
			Subpart:          subpart,
		})
		names = append(names, name)
	}

	if _, err := s.repo.UpsertFundingSources(ctx, sources); err != nil {
		return SeedResult{}, errs.Wrap(err, "seed funding sources")
	}

	logging.Info(logContext(ctx, "usecase.funding_sources"), "funding sources seeded", slog.Int("count", len(sources)))
	return SeedResult{Upserted: len(sources), Names: names}, nil
}
