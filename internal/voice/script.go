// Package voice prepares trailer scripts for speech synthesis and maps them
// onto upstream audio calls.
package voice

import (
	"regexp"
	"strings"
)

// MaxScriptLength is the longest input the upstream synthesizer accepts.
// Longer scripts are truncated with a trailing ellipsis marker.
const MaxScriptLength = 4096

// PauseMarker is inserted where the narrator should breathe: at ellipses and
// sentence boundaries. The synthesizer reads it as a beat of silence.
const PauseMarker = ` <break time="0.4s" /> `

var (
	stageDirectionRe = regexp.MustCompile(`\[[^\]]*\]`)
	parentheticalRe  = regexp.MustCompile(`\([^)]*\)`)
	ellipsisRe       = regexp.MustCompile(`(\.\s*){3,}|…`)
	sentenceEndRe    = regexp.MustCompile(`([.!?])\s+`)
	whitespaceRe     = regexp.MustCompile(`[ \t]+`)
)

// PrepareScript turns a raw trailer script into text fit for the speech
// synthesizer: bracketed stage directions and parenthetical notes are not
// meant to be spoken and are removed, ellipses and sentence boundaries become
// explicit pause markup, and overlong input is truncated. The function is
// pure, so identical input always yields identical output.
func PrepareScript(script string) string {
	s := stageDirectionRe.ReplaceAllString(script, " ")
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = ellipsisRe.ReplaceAllString(s, PauseMarker)
	s = sentenceEndRe.ReplaceAllString(s, "$1"+PauseMarker)
	s = whitespaceRe.ReplaceAllString(s, " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	s = strings.Join(lines, "\n")

	if len(s) > MaxScriptLength {
		s = truncateRunes(s, MaxScriptLength) + "..."
	}
	return s
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
