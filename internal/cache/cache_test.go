package cache_test

import (
	"context"
	"testing"

	"planora/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupCache(t *testing.T) *cache.ProjectViewCache {
	mr := miniredis.RunT(t)

	c, err := cache.New(mr.Addr())
	assert.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c
}

func TestProjectViewCache_SetGetRoundTrip(t *testing.T) {
	c := setupCache(t)
	projectID := uuid.New()
	payload := []byte(`{"project":{"name":"Website Redesign"}}`)

	err := c.SetProject(context.Background(), projectID, payload)
	assert.NoError(t, err)

	got, err := c.GetProject(context.Background(), projectID)
	assert.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestProjectViewCache_MissIsNotAnError(t *testing.T) {
	c := setupCache(t)

	got, err := c.GetProject(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestProjectViewCache_Invalidate(t *testing.T) {
	c := setupCache(t)
	projectID := uuid.New()

	err := c.SetProject(context.Background(), projectID, []byte(`{}`))
	assert.NoError(t, err)

	err = c.InvalidateProject(context.Background(), projectID)
	assert.NoError(t, err)

	got, err := c.GetProject(context.Background(), projectID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestNew_UnreachableRedis(t *testing.T) {
	c, err := cache.New("127.0.0.1:1")
	assert.Error(t, err)
	assert.Nil(t, c)
}
