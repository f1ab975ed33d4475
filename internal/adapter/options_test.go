package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]any{
		KeyVisibility:           "public",
		KeyMimetype:             "text/plain",
		KeyCacheControl:         "no-cache",
		KeyExpires:              "2030-01-02T03:04:05Z",
		KeyStorageClass:         "REDUCED_REDUNDANCY",
		KeyServerSideEncryption: "AES256",
		KeyMetadata:             map[string]any{"team": "media"},
		KeyACL:                  "bucket-owner-full-control",
		KeyContentType:          "text/csv",
		KeyContentLength:        "42",
		"Unrecognized":          struct{}{},
	})
	require.NoError(t, err)

	assert.Equal(t, VisibilityPublic, cfg.Visibility)
	assert.Equal(t, "text/plain", cfg.Mimetype)
	assert.Equal(t, "no-cache", *cfg.CacheControl)
	assert.True(t, cfg.Expires.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, "REDUCED_REDUNDANCY", cfg.StorageClass)
	assert.Equal(t, "AES256", cfg.ServerSideEncryption)
	assert.Equal(t, map[string]string{"team": "media"}, cfg.Metadata)
	assert.Equal(t, "bucket-owner-full-control", cfg.ACL)
	assert.Equal(t, "text/csv", cfg.ContentType)
	assert.Equal(t, int64(42), *cfg.ContentLength)
}

func TestConfigFromMap_Empty(t *testing.T) {
	cfg, err := ConfigFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestConfigFromMap_ValueForms(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]any{
		KeyVisibility:    VisibilityPrivate,
		KeyExpires:       "Wed, 21 Oct 2015 07:28:00 GMT",
		KeyContentLength: 7,
		KeyMetadata:      map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, VisibilityPrivate, cfg.Visibility)
	assert.Equal(t, 2015, cfg.Expires.Year())
	assert.Equal(t, int64(7), *cfg.ContentLength)
	assert.Equal(t, "v", cfg.Metadata["k"])

	when := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg, err = ConfigFromMap(map[string]any{KeyExpires: when, KeyContentLength: float64(9)})
	require.NoError(t, err)
	assert.True(t, cfg.Expires.Equal(when))
	assert.Equal(t, int64(9), *cfg.ContentLength)
}

func TestConfigFromMap_Errors(t *testing.T) {
	tests := map[string]map[string]any{
		"visibility not string":  {KeyVisibility: 1},
		"bad expires":            {KeyExpires: "next tuesday"},
		"expires wrong type":     {KeyExpires: 12},
		"fractional length":      {KeyContentLength: 1.5},
		"non numeric length":     {KeyContentLength: "big"},
		"metadata wrong type":    {KeyMetadata: "k=v"},
		"metadata value non str": {KeyMetadata: map[string]any{"k": 1}},
	}

	for name, bag := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ConfigFromMap(bag)
			assert.Error(t, err)
		})
	}
}
