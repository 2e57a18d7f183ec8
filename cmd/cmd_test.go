package cmd

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content/rest"
	"github.com/Zachkp/portfolio/internal/content/sqlstore"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/relay"
)

func TestReadBundle_ExampleContent(t *testing.T) {
	bundle, err := readBundle("../content.example.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Zach Kordas-Potter", bundle.PersonalInfo.Name)
	assert.Len(t, bundle.Projects, 4)
	assert.Len(t, bundle.JourneyTimeline, 3)
}

func TestReadBundle_Missing(t *testing.T) {
	_, err := readBundle("does-not-exist.yaml")
	assert.ErrorContains(t, err, "failed to open")
}

func TestNewMailer(t *testing.T) {
	logger := logging.Discard()
	tests := []struct {
		provider string
		want     any
	}{
		{config.ProviderResend, &relay.ResendMailer{}},
		{config.ProviderSMTP, &relay.SMTPMailer{}},
		{config.ProviderLog, &relay.LogMailer{}},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.Config{Mail: config.MailConfig{Provider: tt.provider, ResendAPIKey: "re_x"}}
			m, err := newMailer(cfg, logger)
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}

	_, err := newMailer(config.Config{Mail: config.MailConfig{Provider: "carrier-pigeon"}}, logger)
	assert.Error(t, err)
}

func TestNewContentStore(t *testing.T) {
	db, err := sqlstore.Open("file:cmd_content_store?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	store, err := newContentStore(context.Background(), config.Config{ContentSource: config.SourceSQLite}, db)
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, store)

	store, err = newContentStore(context.Background(), config.Config{ContentSource: config.SourceREST, ContentRESTURL: "http://x"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &rest.Client{}, store)
}

func TestSetGinMode(t *testing.T) {
	require.NoError(t, setGinMode(gin.TestMode))
	assert.Error(t, setGinMode("verbose"))
}

func TestNewCache_RetryPolicy(t *testing.T) {
	cache := newCache(config.Config{CacheRetryAttempts: 3}, logging.Discard(), nil)
	assert.NotNil(t, cache)
}
