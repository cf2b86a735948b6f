package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRegistry = `
sources:
  - name: PANDORA
    display_name: Pandora
    streaming: true
  - name: BLUETOOTH
    display_name: Bluetooth
    local: true

bmx_services:
  - id: tunein-bmx
    display_name: TuneIn
    logo_url: https://assets.example.com/tunein.png
    min_firmware: "19.0.5"
    enabled: true
  - id: napster-bmx
    display_name: Napster
    enabled: false
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	service, err := Load(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	sources := service.Sources()
	require.Len(t, sources, 2)
	require.Equal(t, "PANDORA", sources[0].Name)
	require.True(t, sources[0].Streaming)
	require.True(t, sources[1].Local)
}

func TestBMXServices_OnlyEnabled(t *testing.T) {
	service, err := Load(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	services := service.BMXServices()
	require.Len(t, services, 1)
	require.Equal(t, "tunein-bmx", services[0].ID)
	require.Equal(t, "19.0.5", services[0].MinFirmware)
}

func TestSourceByName(t *testing.T) {
	service, err := Load(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)

	source := service.SourceByName("BLUETOOTH")
	require.NotNil(t, source)
	require.Equal(t, "Bluetooth", source.DisplayName)

	require.Nil(t, service.SourceByName("UNKNOWN"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeRegistry(t, "sources: [unclosed"))
	require.Error(t, err)
}
