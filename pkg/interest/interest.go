package interest

// BlocksPerYear is fixed by the accrual contract (~10-minute blocks).
const BlocksPerYear = 52560

// Accrue computes simple interest over elapsed blocks.
//
// The two-stage truncation (annual rate first, then per-block) is the
// load-bearing part: it under-charges relative to a single combined
// division and downstream balances depend on that exact rounding. Do not
// collapse it into one division. Small principals legitimately accrue 0.
func Accrue(principal, rateBps, blocksElapsed uint64) uint64 {
	annual := principal * rateBps / 10000
	perBlock := annual / BlocksPerYear
	return perBlock * blocksElapsed
}
