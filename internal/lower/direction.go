package lower

// PullDirection decides what the DMA engine is told about a transfer between
// a buffer in region src and a buffer in region dst: true means pull (data
// moves from the further region toward the core), false means push. The
// comparison is unsigned and total; equal tags resolve to push.
func PullDirection(src, dst uint64) bool {
	return src > dst
}
