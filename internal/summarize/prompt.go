package summarize

import (
	"fmt"
	"strings"
)

// Temperature biases the model toward faithful, deterministic output over
// creativity.
const Temperature = 0.4

// systemPrompt fixes the output contract: an executive summary, 3-6 bullet
// highlights and action items, as a bare JSON object. Action items are
// inferred when the transcript has none, so an empty list never means "no
// follow-ups exist".
const systemPrompt = `You are an expert meeting and content summarizer. Analyze the provided transcript
and produce a concise executive summary, 3-6 bullet highlights, and clear action items.
Write in the second person plural (e.g., "You discussed", "Your team should").
Always respond with valid JSON using the structure:
{
  "summary": string,
  "bulletPoints": string[],
  "actionItems": string[]
}
If there are no explicit action items, infer reasonable follow-ups based on the content.`

// buildUserMessage prefixes the transcript with a context preamble built from
// whichever optional fields are present.
func buildUserMessage(req Request) string {
	var lines []string
	if req.Title != "" {
		lines = append(lines, "Title: "+req.Title)
	}
	if req.SourceType != "" {
		lines = append(lines, "Source: "+req.SourceType)
	}
	if req.Duration != nil {
		lines = append(lines, fmt.Sprintf("Duration (seconds): %g", *req.Duration))
	}

	var b strings.Builder
	if len(lines) > 0 {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript:\n")
	b.WriteString(req.Transcript)
	return b.String()
}
