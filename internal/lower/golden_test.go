package lower

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/veloce-lang/veloce/internal/rewrite"
)

// TestDemoModuleGolden pins the full printed IR of the lowered sample
// program. Regenerate with: go test ./internal/lower -update
func TestDemoModuleGolden(t *testing.T) {
	pattern := mustPattern(t)
	mod := BuildDemoModule()
	for _, fn := range mod.Functions {
		if err := rewrite.Apply(fn, pattern); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cluster_copy_lowered", []byte(mod.String()))
}
