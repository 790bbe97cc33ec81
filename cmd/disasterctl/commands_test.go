package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify_Args(t *testing.T) {
	out, err := execute(t, "", "classify", "SOS trapped on roof", "Roads are clear now")
	require.NoError(t, err)

	assert.Contains(t, out, "Priority")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "Normal")
	assert.Contains(t, out, "Roads are clear now")
}

func TestClassify_Stdin(t *testing.T) {
	out, err := execute(t, "Need food urgently\n\nall quiet here\n", "classify")
	require.NoError(t, err)

	assert.Contains(t, out, "Need food urgently")
	assert.Contains(t, out, "all quiet here")
}

func TestClassify_NothingToClassify(t *testing.T) {
	_, err := execute(t, "\n", "classify")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResources_SampleSetWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	out, err := execute(t, "", "resources", "--lat", "40.7484", "--lon", "-73.9857", "--distance", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Red Cross Shelter")
	assert.Contains(t, out, "Bellevue Hospital")
	assert.NotContains(t, out, "Boston Medical Center")
}

func TestResources_NoneInRange(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	out, err := execute(t, "", "resources", "--lat", "0", "--lon", "0", "--distance", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No resources within 1 km")
}

func TestResources_RequiresOrigin(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "resources", "--lat", "40.7")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolve_PlaceholderThroughNominatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Manhattan, NYC", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"lat":"40.7831","lon":"-73.9712","display_name":"Manhattan"}]`))
	}))
	defer srv.Close()

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEOCODE_PROVIDERS", "nominatim")
	t.Setenv("NOMINATIM_BASE_URL", srv.URL)

	out, err := execute(t, "", "resolve", "Flooding", "near", "the", "river")
	require.NoError(t, err)

	assert.Contains(t, out, "Manhattan, NYC")
	assert.Contains(t, out, "POINT(-73.9712 40.7831)")
}

func TestGeocode_ChainExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	t.Setenv("GEOCODE_PROVIDERS", "nominatim")
	t.Setenv("NOMINATIM_BASE_URL", srv.URL)

	_, err := execute(t, "", "geocode", "Atlantis")
	require.ErrorIs(t, err, domain.ErrGeocode)
}

func TestSeedResources_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "", "seed-resources")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestPublishReport_RequiresDisaster(t *testing.T) {
	_, err := execute(t, "", "publish-report", "SOS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disaster-id")
}

func TestReadResources(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id":"r-1","name":"Shelter","type":"shelter","geo":{"lat":1,"lng":2}}]`), 0o600))

	items, err := readResources(good)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.Geo{Lat: 1, Lng: 2}, items[0].Geo)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"type":"shelter"}]`), 0o600))
	_, err = readResources(bad)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = readResources(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"x"}, {"y", "z"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "x")
	assert.Contains(t, out, "z")
	assert.Empty(t, renderTable(nil, nil, nil))
}
