// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/voxswitch/utils"

// LimiterThreshold is the ceiling applied to every rendered block.
const LimiterThreshold float32 = 0.95

// Limit scales block in place by threshold/peak when its peak exceeds
// threshold. It reports whether the block was scaled.
func Limit(block []float32, threshold float32) bool {
	peak := utils.Peak(block)
	if peak <= threshold {
		return false
	}
	utils.Scale(block, threshold/peak)
	return true
}
