package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDescription(t *testing.T) {
	d := Default()
	require.NoError(t, d.CheckDriver())
	assert.Equal(t, "pulp-cluster", d.Name)
	assert.Equal(t, "l1", d.RegionName(0))
	assert.Equal(t, "l2", d.RegionName(2))
	assert.Equal(t, "region#9", d.RegionName(9))
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.yaml")
	doc := `name: bigcluster
driver_version: 3.0.1
regions:
  - tag: 0
    name: tcdm
  - tag: 3
    name: hbm
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bigcluster", d.Name)
	assert.Equal(t, "hbm", d.RegionName(3))
	assert.NoError(t, d.CheckDriver())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "anon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("driver_version: 2.2.0\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "missing name")
}

func TestCheckDriver(t *testing.T) {
	cases := []struct {
		name    string
		version string
		ok      bool
	}{
		{"minimum exactly", MinDriverVersion, true},
		{"newer", "2.5.0", true},
		{"too old", "1.9.3", false},
		{"empty", "", false},
		{"garbage", "mchan-latest", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Default()
			d.DriverVersion = tc.version
			err := d.CheckDriver()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
