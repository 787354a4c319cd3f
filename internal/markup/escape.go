// Package markup escapes text for Telegram MarkdownV2 captions.
package markup

import "strings"

// The backslash pair must come first so the escapes added for the remaining
// characters are not themselves escaped. strings.Replacer scans the input in
// a single pass, so replacement output is never rescanned.
var replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"-", `\-`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
)

// EscapeV2 escapes every MarkdownV2 reserved character in text. Escaping
// already-escaped input adds visible backslashes rather than corrupting the
// message; callers escape exactly once.
func EscapeV2(text string) string {
	if text == "" {
		return ""
	}
	return replacer.Replace(text)
}
