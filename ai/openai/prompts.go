package openai

import "fmt"

const topicResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "topics": {
      "type": "array",
      "items": {
        "type": "string",
        "pattern": "^[a-z0-9]+( [a-z0-9]+)*$"
      }
    }
  },
  "required": ["topics"],
  "additionalProperties": false
}`

const topicPromptTemplate = `You help a program committee chair find reviewers. Extract the research topics
the request is about and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Topics are lowercase research areas of 1-4 words, e.g. "federated learning", "program synthesis".
- Return at most %d topics, most central first.
- Include only topics that are explicitly mentioned or clearly implied. Do not hallucinate.
- Ignore conference names, years, and words about the reviewing process itself.
- If no topics can be identified, return "topics": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "We need PC members for SIGMOD 2025 who know query optimization and learned indexes."
Output:
{"topics":["query optimization","learned indexes"]}

Example (informal):
Input: "anyone good at differential privacy or secure aggregation for FL?"
Output:
{"topics":["differential privacy","secure aggregation","federated learning"]}`

// buildSystemPrompt creates the system prompt with the schema and topic limit embedded.
func buildSystemPrompt(maxTopics int) string {
	return fmt.Sprintf(topicPromptTemplate, topicResponseSchema, maxTopics)
}
