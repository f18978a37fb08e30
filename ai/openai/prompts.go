package openai

import "fmt"

const suggestionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "tags": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "tag": {
            "type": "string",
            "pattern": "^[a-z0-9]+([ -][a-z0-9]+)*$"
          },
          "confidence": {
            "type": "integer",
            "minimum": 1,
            "maximum": 10
          }
        },
        "required": ["tag", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["tags"],
  "additionalProperties": false
}`

const suggestionPromptTemplate = `Suggest topical tags for a saved note or bookmark and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Tags must be lowercase, 1-3 words, and describe topics, not sentiment.
- Prefer established vocabulary ("machine learning") over invented phrases.
- Confidence is an integer from 1 (weak guess) to 10 (clearly central to the text). Rate how well the tag captures what the note is about.
- Suggest at most %d tags. Fewer good tags beat many weak ones.
- Tag only what the text actually covers. Do not hallucinate.
- If the text supports no useful tags, return "tags": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example (technical article):
Input:
Title: Understanding B-Trees
Why are B-trees the default index structure in relational databases? This post walks through their branching factor, disk access patterns, and rebalancing.
Output:
{
  "tags": [
    {"tag":"databases","confidence":9},
    {"tag":"data structures","confidence":8},
    {"tag":"b-tree","confidence":8}
  ]
}

Example (short personal note, no title):
Input:
Title:
remember to try sous vide for the steak next weekend
Output:
{
  "tags": [
    {"tag":"cooking","confidence":8}
  ]
}

Example (news bookmark):
Input:
Title: EU passes new AI regulation
The European Parliament approved the AI Act today, introducing risk tiers for machine learning systems deployed in the union.
Output:
{
  "tags": [
    {"tag":"ai regulation","confidence":9},
    {"tag":"european union","confidence":8},
    {"tag":"machine learning","confidence":6}
  ]
}`

// buildSystemPrompt creates the system prompt with the tag cap embedded.
func buildSystemPrompt(maxTags int) string {
	return fmt.Sprintf(suggestionPromptTemplate, suggestionResponseSchema, maxTags)
}
