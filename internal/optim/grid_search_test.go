package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Name = "sweep"
	cfg.Steps = 10
	cfg.FrameEvery = 5
	cfg.Evaluator = "direct"
	cfg.Galaxies = []config.GalaxyConfig{{Stars: 30, Mass: 1e10}}
	return cfg
}

func TestGridSearch(t *testing.T) {
	g, err := NewGridSearch([]string{"dt", "softening"}, [][]float64{{50, 100}, {20, 0}})
	require.NoError(t, err)

	base := tinyConfig()
	points, err := g.Search(context.Background(), base, nil, Objectives["energy_drift"])
	require.NoError(t, err)
	require.Len(t, points, 4)

	for i := 0; i < 2; i++ {
		assert.NoError(t, points[i].Err)
		assert.Equal(t, 20.0, points[i].Params["softening"])
		assert.False(t, math.IsInf(points[i].Value, 1))
	}
	assert.LessOrEqual(t, points[0].Value, points[1].Value)

	for _, p := range points[2:] {
		assert.ErrorIs(t, p.Err, dynamo.ErrInvalidConfiguration)
		assert.True(t, math.IsInf(p.Value, 1))
	}

	assert.Equal(t, config.DefaultConfig().Dt, base.Dt, "base config must not change")
}

func TestGridSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{50, 100}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Search(ctx, tinyConfig(), nil, Objectives["energy_drift"])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGridSearchInvalid(t *testing.T) {
	_, err := NewGridSearch([]string{"mass"}, [][]float64{{1}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfiguration)

	_, err = NewGridSearch([]string{"dt"}, [][]float64{{}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfiguration)

	_, err = NewGridSearch([]string{"dt", "theta"}, [][]float64{{1}})
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfiguration)
}
