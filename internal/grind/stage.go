package grind

const (
	stageSproutThreshold  = 3
	stageSaplingThreshold = 7
	stageBloomThreshold   = 14
	stageTreeThreshold    = 30
)

var StageNames = [5]string{"Seed", "Sprout", "Sapling", "Bloom", "Tree"}

// Stage maps a streak length to its plant growth stage 0-4. Monotonic
// in streak; best_streak plays no part.
func Stage(streak int) int {
	switch {
	case streak >= stageTreeThreshold:
		return 4
	case streak >= stageBloomThreshold:
		return 3
	case streak >= stageSaplingThreshold:
		return 2
	case streak >= stageSproutThreshold:
		return 1
	default:
		return 0
	}
}
