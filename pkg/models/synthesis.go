package models

// ReadabilityMetrics holds standard Flesch readability measurements
// for a piece of generated text.
type ReadabilityMetrics struct {
	// FleschReadingEase is the Flesch Reading Ease score. Higher is
	// easier to read; 60-70 is plain English.
	FleschReadingEase float64 `json:"flesch_reading_ease"`
	// FleschKincaidGrade is the US school grade level of the text.
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`
	// SyllablesPerWord is the average syllable count per word.
	SyllablesPerWord float64 `json:"syllables_per_word"`
	// WordsPerSentence is the average word count per sentence.
	WordsPerSentence float64 `json:"words_per_sentence"`
}

// Synthesis is a merged, conflict-resolved consensus output built from
// the key points of every contributor's opinion.
type Synthesis struct {
	// Text is the concatenated surviving key points.
	Text string `json:"text"`
	// KeyPoints are the deduplicated points in their final order.
	KeyPoints []string `json:"key_points"`
	// Weights maps each contributing agent to its expertise weight.
	Weights map[string]float64 `json:"weights"`
	// Method tags how the synthesis was produced.
	Method string `json:"method"`
	// Readability scores the synthesis text.
	Readability ReadabilityMetrics `json:"readability"`
}
