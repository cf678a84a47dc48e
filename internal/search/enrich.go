package search

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
)

// Enrich attaches developers and agents to a page of properties. The
// distinct non-null foreign keys across the whole page are collected
// and fetched with one batched query per related type, so the query
// count never depends on the page size.
//
// A failed batch fetch degrades that relation to nil for the page; the
// primary result is still returned.
func Enrich(ctx context.Context, db *gorm.DB, properties []domain.Property) []domain.Property {
	if len(properties) == 0 {
		return properties
	}

	developerIDs := collectIDs(properties, func(p *domain.Property) *uint { return p.DeveloperID })
	agentIDs := collectIDs(properties, func(p *domain.Property) *uint { return p.AgentID })

	var (
		developers map[uint]*domain.Developer
		agents     map[uint]*domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	if len(developerIDs) > 0 {
		g.Go(func() error {
			var rows []domain.Developer
			if err := db.WithContext(gctx).Where("id IN ?", developerIDs).Find(&rows).Error; err != nil {
				log.Printf("[SEARCH] developer batch fetch failed, degrading to nil: %v", err)
				return nil
			}
			developers = make(map[uint]*domain.Developer, len(rows))
			for i := range rows {
				developers[rows[i].ID] = &rows[i]
			}
			return nil
		})
	}
	if len(agentIDs) > 0 {
		g.Go(func() error {
			var rows []domain.User
			if err := db.WithContext(gctx).Where("id IN ?", agentIDs).Find(&rows).Error; err != nil {
				log.Printf("[SEARCH] agent batch fetch failed, degrading to nil: %v", err)
				return nil
			}
			agents = make(map[uint]*domain.User, len(rows))
			for i := range rows {
				agents[rows[i].ID] = &rows[i]
			}
			return nil
		})
	}
	_ = g.Wait() // fetch errors degrade, they never propagate

	for i := range properties {
		if id := properties[i].DeveloperID; id != nil {
			properties[i].Developer = developers[*id]
		}
		if id := properties[i].AgentID; id != nil {
			properties[i].Agent = agents[*id]
		}
	}
	return properties
}

// EnrichOne attaches relations to a single property.
func EnrichOne(ctx context.Context, db *gorm.DB, property *domain.Property) *domain.Property {
	if property == nil {
		return nil
	}
	enriched := Enrich(ctx, db, []domain.Property{*property})
	return &enriched[0]
}

func collectIDs(properties []domain.Property, key func(*domain.Property) *uint) []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for i := range properties {
		if id := key(&properties[i]); id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	return ids
}
