package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocument simulates a page that grows by one chunk each time the
// viewport reaches the bottom, a fixed number of times.
type fakeDocument struct {
	top, client, height float64
	growths             int
	steps               int
}

func (d *fakeDocument) step(step float64) StepFunc {
	return func(ctx context.Context) (ScrollPosition, error) {
		d.steps++
		d.top += step
		if d.top+d.client > d.height {
			d.top = d.height - d.client
		}
		pos := ScrollPosition{Top: d.top, ClientHeight: d.client, ScrollHeight: d.height}
		if pos.AtBottom() && d.growths > 0 {
			d.growths--
			d.height += 1000
		}
		return pos, nil
	}
}

func TestScrollUntilStableWaitsForGrowthToStop(t *testing.T) {
	doc := &fakeDocument{client: 800, height: 2000, growths: 2}
	opts := ScrollOptions{Step: 500, StableChecks: 3}

	steps, err := ScrollUntilStable(context.Background(), doc.step(500), opts)
	require.NoError(t, err)
	assert.Equal(t, doc.steps, steps)
	assert.Equal(t, 0, doc.growths)
	assert.Equal(t, float64(4000), doc.height)
}

func TestScrollUntilStableShortPage(t *testing.T) {
	doc := &fakeDocument{client: 800, height: 800}
	steps, err := ScrollUntilStable(context.Background(), doc.step(500), ScrollOptions{StableChecks: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, steps)
}

func TestScrollUntilStableHitsLimit(t *testing.T) {
	endless := func(ctx context.Context) (ScrollPosition, error) {
		return ScrollPosition{Top: 0, ClientHeight: 100, ScrollHeight: 10000}, nil
	}
	steps, err := ScrollUntilStable(context.Background(), endless, ScrollOptions{StableChecks: 3, MaxScrolls: 7})
	assert.ErrorIs(t, err, ErrScrollLimit)
	assert.Equal(t, 7, steps)
}

func TestScrollUntilStableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	step := func(ctx context.Context) (ScrollPosition, error) {
		calls++
		cancel()
		return ScrollPosition{Top: 0, ClientHeight: 100, ScrollHeight: 10000}, nil
	}

	_, err := ScrollUntilStable(ctx, step, ScrollOptions{StableChecks: 3, Delay: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestScrollUntilStablePropagatesStepError(t *testing.T) {
	boom := errors.New("tab crashed")
	_, err := ScrollUntilStable(context.Background(), func(ctx context.Context) (ScrollPosition, error) {
		return ScrollPosition{}, boom
	}, DefaultScrollOptions())
	assert.ErrorIs(t, err, boom)
}

func TestResolveExecPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "/opt/chrome", ResolveExecPath("/opt/chrome", false, dir))
	assert.Equal(t, "", ResolveExecPath("", true, dir))
	assert.Equal(t, "", ResolveExecPath("", false, dir))

	portable := filepath.Join(dir, "chrome-linux", "chrome")
	require.NoError(t, os.MkdirAll(filepath.Dir(portable), 0755))
	require.NoError(t, os.WriteFile(portable, []byte("#!/bin/sh"), 0755))

	assert.Equal(t, portable, ResolveExecPath("", false, dir))
	assert.Equal(t, "", ResolveExecPath("", true, dir))
}

func TestIsBlockedResource(t *testing.T) {
	assert.True(t, IsBlockedResource(network.ResourceTypeImage))
	assert.True(t, IsBlockedResource(network.ResourceTypeMedia))
	assert.False(t, IsBlockedResource(network.ResourceTypeDocument))
	assert.False(t, IsBlockedResource(network.ResourceTypeScript))
}
