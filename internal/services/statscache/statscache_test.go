package statscache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mo-amir99/coursetrack-server-go/pkg/cache"
	"github.com/mo-amir99/coursetrack-server-go/pkg/logger"
)

type row struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestService_StoreLoadInvalidate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(cache.NewMemoryCache(), time.Minute, logger.Discard())

	var got []row
	assert.False(t, svc.Load(ctx, &got))

	svc.Store(ctx, []row{{Title: "Go basics", Count: 2}})
	require.True(t, svc.Load(ctx, &got))
	assert.Equal(t, []row{{Title: "Go basics", Count: 2}}, got)

	svc.Invalidate(ctx)
	got = nil
	assert.False(t, svc.Load(ctx, &got))
	assert.Nil(t, got)
}

func TestService_DisabledVariants(t *testing.T) {
	ctx := context.Background()

	var nilSvc *Service
	nilSvc.Store(ctx, []row{{Title: "x"}})
	nilSvc.Invalidate(ctx)
	assert.False(t, nilSvc.Load(ctx, &[]row{}))

	noTTL := NewService(cache.NewMemoryCache(), 0, logger.Discard())
	noTTL.Store(ctx, []row{{Title: "x"}})
	assert.False(t, noTTL.Load(ctx, &[]row{}))
}
