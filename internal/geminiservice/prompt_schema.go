package geminiservice

import (
	"fmt"
	"strings"
)

// This file stores the prompts sent with every diet plan request.

// SystemPrompt defines the AI's role and the output format the renderer understands.
const SystemPrompt = `You are an expert nutritionist. Your tone is encouraging and practical.
Format your answer using only these Markdown conventions, one per line:
"# ", "## " or "### " for headings, "- " for bullet points, and **double asterisks** for bold text.
Do not use tables, numbered lists, nested lists or code blocks.
Remind the user that this is general guidance and not medical advice.`

// DietPlanPromptTemplate is the template for the user's query.
// The first %s is the BMI category, the second the deficiency clause.
const DietPlanPromptTemplate = `My BMI category is "%s".
Create a personalized one-day diet plan for me with breakfast, lunch, dinner and snacks.
%s
Include general nutrition tips that suit my BMI category and a short list of foods to limit.`

const (
	noDeficiencyClause = "I have no known nutritional deficiencies, so focus on a balanced, healthy diet."
	deficiencyClause   = "I have the following nutritional deficiencies: %s. Prioritize foods rich in these nutrients and explain briefly how each meal helps address them."
)

// BuildDietPlanPrompt constructs the user prompt for a category and optional
// list of deficiencies.
func BuildDietPlanPrompt(category string, deficiencies []string) string {
	clause := noDeficiencyClause
	if len(deficiencies) > 0 {
		clause = fmt.Sprintf(deficiencyClause, strings.Join(deficiencies, ", "))
	}
	return fmt.Sprintf(DietPlanPromptTemplate, category, clause)
}
