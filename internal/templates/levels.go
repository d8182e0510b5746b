package templates

import "github.com/jonathan/cv-builder/internal/types"

// LevelScale is the number of steps in a level depiction.
const LevelScale = 5

// unknownLevelWeight is the midpoint of the scale.
const unknownLevelWeight = 3

// LevelWeight maps a proficiency level onto the 1..LevelScale scale.
// Unknown and empty levels sit at the midpoint.
func LevelWeight(level types.Level) int {
	switch level {
	case types.LevelBeginner:
		return 1
	case types.LevelIntermediate:
		return 2
	case types.LevelAdvanced:
		return 3
	case types.LevelExpert:
		return 4
	case types.LevelNative:
		return 5
	default:
		return unknownLevelWeight
	}
}

// LevelPercent is LevelWeight expressed as a percentage of the scale.
func LevelPercent(level types.Level) int {
	return LevelWeight(level) * 100 / LevelScale
}

// LevelSteps returns LevelScale booleans, the first LevelWeight of which are set.
func LevelSteps(level types.Level) []bool {
	w := LevelWeight(level)
	steps := make([]bool, LevelScale)
	for i := 0; i < w; i++ {
		steps[i] = true
	}
	return steps
}

var levelLabels = map[types.Level]string{
	types.LevelBeginner:     "Beginner",
	types.LevelIntermediate: "Intermediate",
	types.LevelAdvanced:     "Advanced",
	types.LevelExpert:       "Expert",
	types.LevelNative:       "Native",
}

// LevelLabel is the display text of a level. Unknown levels have no label.
func LevelLabel(level types.Level) string {
	return levelLabels[level]
}
