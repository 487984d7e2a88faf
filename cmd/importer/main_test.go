package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/civicfix/internal/core/domain"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "officials.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadManifest(t *testing.T) {
	path := writeManifest(t, `{
		"source": "pune-municipal-2026",
		"profiles": [{
			"user_id": "9b2e7c41-5a6d-4f08-8c13-7e2a1d9f6b02",
			"full_name": "Asha Kulkarni",
			"role": "official",
			"is_verified": true,
			"location": {"city": "Pune", "pincode": "411038", "ward": "Ward 12"},
			"geo_bounds": {"north": 18.52, "south": 18.49, "east": 73.83, "west": 73.79}
		}]
	}`)

	m, err := readManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "pune-municipal-2026", m.Source)
	require.Len(t, m.Profiles, 1)
	assert.Equal(t, domain.RoleOfficial, m.Profiles[0].Role)
	assert.Equal(t, "411038", m.Profiles[0].Location.Pincode)
	require.NotNil(t, m.Profiles[0].GeoBounds)
}

func TestReadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `{"source": "x", "officials": []}`)

	_, err := readManifest(path)
	assert.Error(t, err)
}

func TestReadManifestEmpty(t *testing.T) {
	path := writeManifest(t, `{"source": "x", "profiles": []}`)

	_, err := readManifest(path)
	assert.ErrorContains(t, err, "no profiles")
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := readManifest(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
