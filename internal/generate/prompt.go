package generate

import "strings"

// DefaultSystemPrompt is the instruction prepended to every run unless the
// configuration overrides it.
const DefaultSystemPrompt = "You are a helpful assistant running locally on this machine. Keep answers concise."

// Qwen-style soft switches controlling the model's internal reasoning trace.
const (
	thinkTag   = "/think"
	noThinkTag = "/no_think"
)

// BuildPrompt assembles the full prompt for one run: the system instruction,
// then the user text with the reasoning-trace switch appended. The switch is
// always present so a model default can never leak through.
func BuildPrompt(system, user string, thinking bool) string {
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	tag := noThinkTag
	if thinking {
		tag = thinkTag
	}
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(user, " \t"))
	b.WriteString(" ")
	b.WriteString(tag)
	b.WriteString("\n")
	return b.String()
}
