package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedownloader/pkg/browser/browsertest"
	"bedownloader/pkg/logger"
)

func TestCollectFromListingPage(t *testing.T) {
	const url = "https://www.behance.net/someone/projects"
	page := browsertest.NewPage(map[string]string{url: profileListing})
	log := logger.NewTestLogger()

	c := New(page, DefaultOptions(), log)
	links, err := c.CollectFromListingPage(context.Background(), url)
	require.NoError(t, err)

	assert.Len(t, links, 3)
	assert.Equal(t, []string{url}, page.Navigations())
	assert.Equal(t, 1, page.Scrolls())
	assert.True(t, log.HasMessage("collected projects"))
}

func TestCollectFromListingPageNavigationError(t *testing.T) {
	const url = "https://www.behance.net/broken"
	page := browsertest.NewPage(nil)
	page.NavigateErrors[url] = errors.New("net::ERR_TIMED_OUT")

	c := New(page, DefaultOptions(), nil)
	links, err := c.CollectFromListingPage(context.Background(), url)
	assert.Error(t, err)
	assert.Nil(t, links)
	assert.Equal(t, 0, page.Scrolls())
}
