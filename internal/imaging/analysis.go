package imaging

// ColorAnalysis summarizes the palette of a photograph.
type ColorAnalysis struct {
	HasColor      bool     `json:"hasColor"`
	DominantTones []string `json:"dominantTones"`
}

// DamageAnalysis describes the restoration work a photograph needs.
type DamageAnalysis struct {
	DamageDetected         []string      `json:"damageDetected"`
	DamageLevel            string        `json:"damageLevel"`
	DamageDescription      string        `json:"damageDescription"`
	RecommendedEnhancement string        `json:"recommendedEnhancement"`
	ColorAnalysis          ColorAnalysis `json:"colorAnalysis"`
}

// AnalyzeDamage returns the assessment used to steer restoration prompts.
// The assessment is fixed: every upload is treated as a moderately aged
// print.
func AnalyzeDamage() DamageAnalysis {
	return DamageAnalysis{
		DamageDetected:         []string{"fading", "scratches", "tears", "discoloration"},
		DamageLevel:            "moderate",
		DamageDescription:      "vintage photograph with moderate fading, minor scratches, slight tears, and age-related discoloration",
		RecommendedEnhancement: "moderate",
		ColorAnalysis: ColorAnalysis{
			HasColor:      true,
			DominantTones: []string{"sepia", "brown", "faded"},
		},
	}
}
