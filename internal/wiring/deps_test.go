package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/app"
	_ "go.trai.ch/cleardep/internal/wiring"
)

// TestGraftGraph resolves the whole node graph the binary starts from.
func TestGraftGraph(t *testing.T) {
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)

	assert.NotNil(t, components.App)
	assert.NotNil(t, components.Logger)
	require.NotNil(t, components.Telemetry)
	assert.NoError(t, components.Telemetry.Close())
}
