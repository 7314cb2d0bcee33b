package encounter

// DefaultReferenceMaxRate is the top of the trigger-frequency scale used by the
// encounter data (0-16 for walking and surfing encounters).
const DefaultReferenceMaxRate = 16

// Efficiency scales an expected EXP by how often the method triggers relative
// to referenceMax. The score is only meaningful for ranking methods against each
// other.
//
// Postcondition: Returns 0 when triggerRate <= 0 or referenceMax <= 0; otherwise
// expectedExp * triggerRate / referenceMax.
func Efficiency(expectedExp float64, triggerRate, referenceMax int) float64 {
	if triggerRate <= 0 || referenceMax <= 0 {
		return 0
	}
	return expectedExp * (float64(triggerRate) / float64(referenceMax))
}
