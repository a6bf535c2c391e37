package telegram

import "strings"

// MaxMessageLength is the Telegram Bot API limit for a single message text.
const MaxMessageLength = 4096

// ChunkMessage splits text into rune-safe chunks of at most limit characters.
// Chunks prefer to break on a newline, then on a space, so words and lines
// survive intact; only an unbroken run longer than the limit is cut mid-way.
func ChunkMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}

		cut := limit
		window := runes[:limit]

		if idx := lastIndexRune(window, '\n'); idx > 0 {
			cut = idx
		} else if idx := lastIndexRune(window, ' '); idx > 0 {
			cut = idx
		}

		// a window of pure whitespace trims to nothing; never emit it
		if chunk := strings.TrimRight(string(runes[:cut]), " \n"); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// skip the delimiter we broke on
		for cut < len(runes) && (runes[cut] == ' ' || runes[cut] == '\n') {
			cut++
		}
		runes = runes[cut:]
	}

	return chunks
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
