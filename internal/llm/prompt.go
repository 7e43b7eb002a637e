package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/solvent/internal/model"
)

// kindDirective tells the backend exactly what shape to answer in
func kindDirective(kind model.AnswerKind, question string) string {
	q := strings.ToLower(question)
	yesNo := strings.Contains(q, "answer 'yes' or 'no'") ||
		strings.Contains(q, "answer with 'yes'") ||
		strings.Contains(q, "yes or no") ||
		strings.Contains(q, "yes/no")

	switch kind {
	case model.KindNumber:
		return "You MUST respond with ONLY a number. No explanation, no text, just the numerical answer."
	case model.KindBoolean:
		return "You MUST respond with ONLY 'true' or 'false'. No other text."
	case model.KindJSON:
		return "You MUST respond with valid JSON only. No other text."
	case model.KindBase64File:
		return "You MUST respond with the file content or instructions for file generation."
	default:
		if yesNo {
			return "You MUST respond with ONLY 'yes' or 'no'. No other text."
		}
		return "You MUST respond with ONLY a string answer. No additional text."
	}
}

// topicDirective sharpens the instructions for recognized question
// shapes. First match wins; order mirrors specificity.
func topicDirective(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "answer 'yes' or 'no'") ||
		strings.Contains(q, "answer with 'yes'") ||
		strings.Contains(q, "yes or no") ||
		strings.Contains(q, "yes/no"):
		return "You MUST respond with ONLY 'yes' or 'no'. Do not use numbers, do not use true/false."
	case strings.Contains(q, "table") && strings.Contains(q, "sum"):
		return "Extract the numbers from the table and compute the sum. Return ONLY the total sum as a number."
	case strings.Contains(q, "table"):
		return "Extract the relevant data from the table. Return ONLY the answer."
	case strings.Contains(q, "json") && strings.Contains(q, "sum"):
		return "Extract the numbers from the JSON and compute the sum. Return ONLY the number."
	case strings.Contains(q, "json") && strings.Contains(q, "max"):
		return "Extract the numbers from the JSON and find the maximum value. Return ONLY the number."
	case strings.Contains(q, "json") && strings.Contains(q, "average"):
		return "Extract the numbers from the JSON and compute the average. Return ONLY the number."
	case strings.Contains(q, "pdf"):
		return "Extract the number from the PDF text as described. Return ONLY the number."
	}
	return ""
}

// buildPrompt assembles the reasoning prompt for one attempt
func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "QUESTION: %s\n\n", req.Question)
	fmt.Fprintf(&b, "CONTEXT AND DATA: %s\n\n", req.Context)

	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Analyze the question and available data carefully\n")
	b.WriteString("2. Perform any necessary calculations or reasoning\n")
	fmt.Fprintf(&b, "3. %s\n", kindDirective(req.Kind, req.Question))
	if extra := topicDirective(req.Question); extra != "" {
		fmt.Fprintf(&b, "4. %s\n", extra)
	}
	if req.Attempt > 0 {
		fmt.Fprintf(&b, "NOTE: This is attempt %d. Previous attempts were incorrect. Please reconsider carefully and double-check your reasoning.\n", req.Attempt+1)
	}
	b.WriteString("Be precise and accurate.\n\n")
	b.WriteString("IMPORTANT: Your response must be ONLY the answer in the required format. No additional text, no explanations, no markdown.\n\n")
	fmt.Fprintf(&b, "Required output type: %s\n\nANSWER:", req.Kind)

	return b.String()
}

// buildValidationPrompt asks whether an answer looks plausible
func buildValidationPrompt(question string, answer any, kind model.AnswerKind) string {
	return fmt.Sprintf(
		"Question: %s\nProposed Answer: %v\nExpected Type: %s\n\nDoes this answer seem reasonable and correct for the question?\nRespond with ONLY 'true' or 'false'.",
		question, answer, kind,
	)
}
