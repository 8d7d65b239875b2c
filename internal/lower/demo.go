package lower

import (
	"github.com/veloce-lang/veloce/internal/mir"
)

// BuildDemoModule constructs the sample program used by the CLI and golden
// tests: one function copying 1024 words from L2 bulk memory into L1 scratch
// and returning the transfer token.
func BuildDemoModule() *mir.Module {
	i32 := mir.IntType{Width: 32}
	src := mir.MemRefType{Elem: i32, Shape: []int64{1024}, MemorySpace: mir.IntAttr{Value: 2}}
	dst := mir.MemRefType{Elem: i32, Shape: []int64{1024}, MemorySpace: mir.IntAttr{Value: 0}}

	fn := &mir.Function{Name: "cluster_copy"}
	srcBuf := fn.NewParam(src)
	dstBuf := fn.NewParam(dst)

	count := mir.NewConstIndex(1024)
	dma := mir.NewDMAStart(srcBuf, dstBuf, count.Result())
	fn.Entry().Append(count, dma, mir.NewReturn(dma.Token()))

	return &mir.Module{Name: "demo", Functions: []*mir.Function{fn}}
}
