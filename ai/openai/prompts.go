package openai

import "fmt"

const keywordResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "keywords": {
      "type": "array",
      "items": {
        "type": "string",
        "pattern": "^[a-z]+( [a-z]+){0,2}$"
      }
    }
  },
  "required": ["keywords"],
  "additionalProperties": false
}`

const keywordPromptTemplate = `Extract the keywords that best describe the given text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Keywords must be lowercase, 1-3 words, singular form only.
- Return at most %d keywords, ordered from most to least relevant.
- Include only keywords that are explicitly mentioned or clearly implied by the text. Do not hallucinate.
- Weight the subject of a sentence higher.
- If no keywords can be identified, return "keywords": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (formal):
Input: "The Eiffel Tower is a famous landmark in Paris."
Output:
{
  "keywords": ["eiffel tower", "paris", "landmark"]
}

Example (missing capitalization, no punctuation):
Input: "the eiffel tower is in paris"
Output:
{
  "keywords": ["eiffel tower", "paris"]
}

Example (informal):
Input: "hey can u tell me about big cats"
Output:
{
  "keywords": ["big cat"]
}`

// buildKeywordPrompt creates the system prompt with the keyword cap embedded.
func buildKeywordPrompt(maxKeywords int) string {
	return fmt.Sprintf(keywordPromptTemplate, keywordResponseSchema, maxKeywords)
}
