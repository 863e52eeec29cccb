// Package postprocess removes common LLM artifacts from a model reply so the
// JSON object inside it can be decoded.
//
// Models asked for JSON-only output still occasionally prepend a reasoning
// block, an introductory sentence, or wrap the object in a markdown fence.
// ExtractJSON strips those and leaves everything else untouched, so a reply
// that is not JSON at all still fails to decode downstream.
package postprocess

import (
	"regexp"
	"strings"
)

// ExtractJSON removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Leading thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Markdown code fence unwrapping
func ExtractJSON(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = unwrapCodeFence(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches one complete <thinking>…</thinking> style block at
// the start of the text. Only leading blocks are removed: the same tags inside
// a JSON string value are content.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)^\s*(?:<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>)`,
)

// truncatedThinkingRe matches a leading thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)^\s*(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	for {
		loc := thinkingBlockRe.FindStringIndex(text)
		if loc == nil {
			break
		}
		text = text[loc[1]:]
	}
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to. Each pattern is anchored to the start of the string
// and requires a colon to reduce false positives.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [JSON|result|response|translation] [object]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:json|result|response|translation)(?: object| output)?\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] JSON:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the)? (?:json|result|response|translation)(?: object| output)?\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: code fences ---

// codeFenceRe matches text that is entirely wrapped in a single markdown
// fence, with an optional info string such as "json".
var codeFenceRe = regexp.MustCompile("(?s)^```[A-Za-z]*\\s*(.*?)\\s*```$")

func unwrapCodeFence(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
