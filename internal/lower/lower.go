// Package lower holds target lowering rules that rewrite generic MIR ops into
// driver call sequences for the cluster DMA engine.
package lower

import (
	"fmt"

	"github.com/veloce-lang/veloce/internal/mir"
	"github.com/veloce-lang/veloce/internal/rewrite"
	"github.com/veloce-lang/veloce/internal/target"
)

// DMAStartToMchan lowers dma.start ops to the mchan driver's transfer queue:
// allocate a transfer slot, compute the direction from the two buffers'
// memory-region tags, extract both base addresses, push the 1D transfer.
// The slot identifier replaces the dma.start token everywhere it is used.
type DMAStartToMchan struct {
	tgt *target.Description
}

// NewDMAStartToMchan builds the rule for one target. It refuses targets whose
// driver runtime predates the transfer queue ABI.
func NewDMAStartToMchan(tgt *target.Description) (*DMAStartToMchan, error) {
	if err := tgt.CheckDriver(); err != nil {
		return nil, err
	}
	return &DMAStartToMchan{tgt: tgt}, nil
}

// MatchAndRewrite implements rewrite.Pattern. Non-dma.start ops are left
// alone. A dma.start whose buffer types lack integer region tags fails the
// rule's preconditions before any op is created.
func (p *DMAStartToMchan) MatchAndRewrite(op mir.Op) (*rewrite.Rewrite, error) {
	dma, ok := op.(*mir.DMAStart)
	if !ok {
		return nil, nil
	}

	srcTag, err := regionTag(op, "source", dma.Src)
	if err != nil {
		return nil, err
	}
	dstTag, err := regionTag(op, "destination", dma.Dst)
	if err != nil {
		return nil, err
	}

	transferID, err := buildCall(target.MchanGetID, nil)
	if err != nil {
		return nil, err
	}
	srcSpace := mir.NewConstIndex(int64(srcTag))
	dstSpace := mir.NewConstIndex(int64(dstTag))
	direction := mir.NewCmpU(mir.CmpUGT, srcSpace.Result(), dstSpace.Result())
	srcAddr := mir.NewExtractBase(dma.Src)
	dstAddr := mir.NewExtractBase(dma.Dst)
	push, err := buildCall(target.MchanPush1D, []*mir.Value{
		dma.Count,
		direction.Result(),
		srcAddr.Result(),
		dstAddr.Result(),
	})
	if err != nil {
		return nil, err
	}

	return &rewrite.Rewrite{
		Ops: []mir.Op{transferID, srcSpace, dstSpace, direction, srcAddr, dstAddr, push},
		Bindings: []rewrite.Binding{
			{Old: dma.Token(), New: transferID.Result()},
		},
	}, nil
}

// regionTag reads the integer memory-region tag off a dma.start buffer
// operand. Both failure modes are IR-construction defects.
func regionTag(op mir.Op, which string, buf *mir.Value) (uint64, error) {
	mt, ok := buf.Type.(mir.MemRefType)
	if !ok {
		return 0, &rewrite.PreconditionError{
			Op:     op,
			Reason: fmt.Sprintf("%s operand is %s, want a memref type", which, buf.Type),
		}
	}
	tag, ok := mt.MemorySpace.(mir.IntAttr)
	if !ok {
		return 0, &rewrite.PreconditionError{
			Op:     op,
			Reason: fmt.Sprintf("%s memref carries no integer memory-region tag", which),
		}
	}
	return uint64(tag.Value), nil
}
