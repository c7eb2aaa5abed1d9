package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// BuildPrompt renders the instruction sent to the generative model.
// It is a pure function: identical inputs always produce the identical
// string, which keeps the hardest-to-test part of the pipeline
// snapshot-testable.
//
// The prompt has five fixed parts:
//  1. the project goal and the user's current text, verbatim
//  2. the evidence snippets with file id, location, and quoted content
//  3. an instruction to identify the text's main claims
//  4. an instruction to explicitly surface contradicting or weakening
//     evidence - the product is critical analysis, not validation
//  5. the output contract: one JSON object with a "suggestions" key
//
// Evidence is never truncated here. If snippet volume risks blowing the
// model's context budget, cap TopK upstream.
func BuildPrompt(goal, currentText string, evidence []domain.EvidenceSnippet) string {
	var b strings.Builder

	b.WriteString("You are a critical-thinking assistant for a research writing tool.\n\n")

	b.WriteString("Project goal: ")
	b.WriteString(goal)
	b.WriteString("\n\nThe user's current text:\n\"\"\"\n")
	b.WriteString(currentText)
	b.WriteString("\n\"\"\"\n\n")

	if len(evidence) == 0 {
		b.WriteString("No evidence found: no indexed material in this project was relevant to the current text.\n\n")
	} else {
		b.WriteString("Relevant evidence from the project's indexed files:\n\n")
		for i, ev := range evidence {
			fmt.Fprintf(&b, "[%d] File %s (%s, %s):\n\"%s\"\n\n",
				i+1, ev.FileID, ev.FileName, ev.LocationLabel, ev.Content)
		}
	}

	b.WriteString("Instructions:\n")
	b.WriteString("1. Identify the main claims the user is making in their current text.\n")
	b.WriteString("2. For each claim, check the evidence for material that SUPPORTS it.\n")
	b.WriteString("3. Most importantly: explicitly surface any evidence that CONTRADICTS or weakens a claim. ")
	b.WriteString("Do not only look for agreement - adversarial findings are the point of this analysis.\n")
	b.WriteString("4. Ask probing questions where a claim rests on an unstated assumption, ")
	b.WriteString("and flag points that need elaboration before they can stand.\n\n")

	b.WriteString("Respond with a single JSON object of the form:\n")
	b.WriteString(`{"suggestions": [{"type": "support" | "contradiction" | "question" | "elaborate", `)
	b.WriteString(`"text": "...", "file_id": "...", "location": "...", "quote": "..."}]}` + "\n")
	b.WriteString("The \"type\" field must be exactly one of the four values above. ")
	b.WriteString("When a suggestion cites evidence, set \"file_id\", \"location\", and \"quote\" ")
	b.WriteString("from the evidence snippet it refers to; omit them for suggestions that cite nothing.\n")

	return b.String()
}
