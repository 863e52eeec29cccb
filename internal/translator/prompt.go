package translator

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a professional translation assistant. You only ever reply with JSON data."

// buildPrompt constructs the user turn. sourceLang may be empty when the
// source language is unknown. text is embedded verbatim.
func buildPrompt(text, sourceLang, targetLang string) string {
	from := "its original language"
	if sourceLang != "" {
		from = sourceLang
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Translate the following text from %s into %s, and extract exactly 3 %s keywords from it.\n", from, targetLang, targetLang))
	sb.WriteString("Text: ")
	sb.WriteString(text)
	sb.WriteString("\n\n")
	sb.WriteString("Respond with ONLY a JSON object. Do not include markdown code fences, explanations or any other text. Use exactly this shape:\n")
	sb.WriteString(fmt.Sprintf(`{"translation": "<%s translation>", "keywords": ["keyword1", "keyword2", "keyword3"]}`, targetLang))

	return sb.String()
}
