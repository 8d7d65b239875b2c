// Package target models the PULP-class cluster machine a lowering pass
// emits code for: its memory region hierarchy and the mchan DMA driver
// runtime the generated calls link against.
package target

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/veloce-lang/veloce/internal/mir"
)

// Region is one level of the memory hierarchy. Higher tags sit further from
// the compute core.
type Region struct {
	Tag  uint64 `yaml:"tag"`
	Name string `yaml:"name"`
}

// Description describes one concrete target configuration.
type Description struct {
	Name string `yaml:"name"`
	// DriverVersion is the mchan driver runtime version available on the
	// target, as shipped with its SDK.
	DriverVersion string   `yaml:"driver_version"`
	Regions       []Region `yaml:"regions"`
}

// Default returns the built-in single-cluster target: L1 scratch close to the
// cores, L2 bulk memory behind the cluster DMA.
func Default() *Description {
	return &Description{
		Name:          "pulp-cluster",
		DriverVersion: "2.3.0",
		Regions: []Region{
			{Tag: 0, Name: "l1"},
			{Tag: 1, Name: "l1-alias"},
			{Tag: 2, Name: "l2"},
		},
	}
}

// Load reads a target description from a YAML file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read target description: %w", err)
	}
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse target description %s: %w", path, err)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("target description %s: missing name", path)
	}
	return &d, nil
}

// RegionName resolves a memory-region tag to its configured name, or a
// placeholder for tags outside the description.
func (d *Description) RegionName(tag uint64) string {
	for _, r := range d.Regions {
		if r.Tag == tag {
			return r.Name
		}
	}
	return fmt.Sprintf("region#%d", tag)
}

// MinDriverVersion is the oldest mchan driver runtime exposing the 1D
// transfer queue ABI emitted by the lowering pass.
const MinDriverVersion = "2.1.0"

// CheckDriver verifies the target's driver runtime satisfies the ABI the
// lowering pass emits calls for.
func (d *Description) CheckDriver() error {
	if d.DriverVersion == "" {
		return fmt.Errorf("target %s: driver version not set", d.Name)
	}
	v, err := semver.NewVersion(d.DriverVersion)
	if err != nil {
		return fmt.Errorf("target %s: bad driver version %q: %w", d.Name, d.DriverVersion, err)
	}
	c, err := semver.NewConstraint(">= " + MinDriverVersion)
	if err != nil {
		return fmt.Errorf("driver version constraint: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("target %s: driver %s is older than required %s", d.Name, d.DriverVersion, MinDriverVersion)
	}
	return nil
}

// RuntimeFunc is the fixed signature of one driver entry point. The lowering
// pass emits calls against these; the driver provides the bodies at link
// time.
type RuntimeFunc struct {
	Symbol  string
	Params  []mir.Type
	Results []mir.Type
}

// Mchan DMA driver entry points.
var (
	// MchanGetID allocates a fresh transfer slot and returns its identifier.
	MchanGetID = RuntimeFunc{
		Symbol:  "mchan_transfer_get_id",
		Results: []mir.Type{mir.IntType{Width: 32}},
	}

	// MchanPush1D enqueues one contiguous asynchronous transfer:
	// (count, direction, srcAddr, dstAddr). direction is true for a pull
	// toward the core.
	MchanPush1D = RuntimeFunc{
		Symbol: "mchan_transfer_push_1d",
		Params: []mir.Type{mir.IndexType{}, mir.BoolType{}, mir.IndexType{}, mir.IndexType{}},
	}
)
