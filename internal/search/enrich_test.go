package search

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/database"
	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
)

func countQueries(t *testing.T, db *gorm.DB, counter *int64) {
	t.Helper()
	err := db.Callback().Query().After("gorm:query").Register("test:count_queries", func(tx *gorm.DB) {
		atomic.AddInt64(counter, 1)
	})
	require.NoError(t, err)
}

func TestEnrichAttachesRelations(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)

	developers := []domain.Developer{
		{Name: "Emaar", Slug: "emaar"},
		{Name: "Damac", Slug: "damac"},
	}
	require.NoError(t, db.Create(&developers).Error)

	agent := domain.User{Name: "Sara Haddad", Email: "sara@platinum.test", HashedPassword: "x", Role: domain.RoleAgent}
	require.NoError(t, db.Create(&agent).Error)

	properties := []domain.Property{
		{Title: "A", Price: 1, MainImage: "a", DeveloperID: &developers[0].ID, AgentID: &agent.ID},
		{Title: "B", Price: 1, MainImage: "b", DeveloperID: &developers[1].ID},
		{Title: "C", Price: 1, MainImage: "c"},
		{Title: "D", Price: 1, MainImage: "d", DeveloperID: &developers[0].ID},
	}
	require.NoError(t, db.Create(&properties).Error)

	var queries int64
	countQueries(t, db, &queries)

	enriched := Enrich(context.Background(), db, properties)

	// One batched query per referenced relation type, regardless of page size
	assert.EqualValues(t, 2, atomic.LoadInt64(&queries))

	require.NotNil(t, enriched[0].Developer)
	assert.Equal(t, "Emaar", enriched[0].Developer.Name)
	require.NotNil(t, enriched[0].Agent)
	assert.Equal(t, "Sara Haddad", enriched[0].Agent.Name)

	require.NotNil(t, enriched[1].Developer)
	assert.Equal(t, "Damac", enriched[1].Developer.Name)
	assert.Nil(t, enriched[1].Agent)

	assert.Nil(t, enriched[2].Developer, "null foreign key stays nil")
	assert.Nil(t, enriched[2].Agent)

	require.NotNil(t, enriched[3].Developer)
	assert.Equal(t, "Emaar", enriched[3].Developer.Name)
}

func TestEnrichUnmatchedForeignKey(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)

	missing := uint(9999)
	properties := []domain.Property{
		{Title: "Orphan", Price: 1, MainImage: "a", DeveloperID: &missing},
	}
	require.NoError(t, db.Create(&properties).Error)

	enriched := Enrich(context.Background(), db, properties)
	assert.Nil(t, enriched[0].Developer, "unmatched lookup degrades to nil")
}

func TestEnrichEmptyPage(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)

	var queries int64
	countQueries(t, db, &queries)

	enriched := Enrich(context.Background(), db, nil)
	assert.Empty(t, enriched)
	assert.Zero(t, atomic.LoadInt64(&queries), "no relations referenced, no queries issued")
}
