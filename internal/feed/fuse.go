package feed

import "math"

// FuseRisk combines the caption risk with the image-AI probability.
// The image signal can only raise the risk floor, never lower it: a
// detected-AI image is independently disqualifying regardless of
// caption tone.
func FuseRisk(captionRisk int, aiProb float64) int {
	imageRisk := int(math.Round(aiProb * 100))
	if imageRisk > captionRisk {
		return imageRisk
	}
	return captionRisk
}

// AssignFlag derives the display flag from the fused risk and the raw
// image probability. The combined metric averages the already-fused
// risk with the image probability again, giving the image channel
// extra leverage in the label; both threshold tests are strict.
func AssignFlag(finalRisk int, aiProb float64) string {
	combined := (float64(finalRisk) + aiProb*100) / 2

	switch {
	case combined > 75:
		return FlagLikelyAI
	case combined > 40:
		return FlagUncertain
	default:
		return FlagLikelyHuman
	}
}
