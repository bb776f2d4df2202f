// Package chunker splits text for services with an input-size limit and joins their answers.
package chunker

import "strings"

// Separator joins reassembled chunks.
const Separator = " "

// Chunk splits text into consecutive pieces of at most maxSize characters (runes).
// Pieces cover text exactly, in order; empty text yields no pieces.
func Chunk(text string, maxSize int) []string {
	if maxSize <= 0 {
		panic("chunker: maxSize must be positive")
	}

	var chunks []string
	start, count := 0, 0
	for i := range text {
		if count == maxSize {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}

// Reassemble joins chunk outputs in submission order with a single space.
func Reassemble(chunks []string) string {
	return strings.Join(chunks, Separator)
}
