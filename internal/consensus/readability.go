package consensus

import (
	"strings"

	"github.com/forgelight/quorum/pkg/models"
)

// analyzeReadability computes the standard Flesch metrics for a text.
func analyzeReadability(text string) models.ReadabilityMetrics {
	words := strings.Fields(text)
	if len(words) == 0 {
		return models.ReadabilityMetrics{}
	}

	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	return models.ReadabilityMetrics{
		FleschReadingEase:  206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord,
		FleschKincaidGrade: 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59,
		SyllablesPerWord:   syllablesPerWord,
		WordsPerSentence:   wordsPerSentence,
	}
}

func countSentences(text string) int {
	count := 0
	for _, s := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// countSyllables estimates a word's syllable count: strip a trailing
// silent "e", then count transitions into vowel groups, with a
// minimum of one per word.
func countSyllables(word string) int {
	word = strings.TrimFunc(strings.ToLower(word), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	if len(word) > 2 && strings.HasSuffix(word, "e") {
		word = word[:len(word)-1]
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if count == 0 {
		return 1
	}
	return count
}
