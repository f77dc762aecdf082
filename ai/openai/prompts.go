package openai

import (
	"fmt"
	"strings"
)

const rankingResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "labels": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["labels"],
  "additionalProperties": false
}`

const rankingPromptTemplate = `Classify the news text given by the user into the candidate topics and return the ranking as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Candidate topics: %s.
- "labels" lists every candidate topic exactly once, most likely topic first.
- Use the candidate names exactly as written. Do not invent topics.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Central bank raises interest rates again"
Output:
{"labels":["Finance","Politics","Science","Culture","Sport"]}`

const entityResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "word": {"type": "string"},
          "type": {"type": "string", "enum": ["PER", "ORG", "LOC", "MISC"]}
        },
        "required": ["word", "type"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const entityPromptTemplate = `Extract the named entities (people, organizations, locations, other proper names) from the text given by the user and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Copy each entity exactly as it appears in the text.
- List entities in the order they appear. If an entity is mentioned twice, list it twice.
- Include only entities that are explicitly mentioned. Do not hallucinate.
- If no entities can be identified, return "entities": [].

Example:
Input: "Angela Merkel met Emmanuel Macron in Paris."
Output:
{"entities":[{"word":"Angela Merkel","type":"PER"},{"word":"Emmanuel Macron","type":"PER"},{"word":"Paris","type":"LOC"}]}`

func buildRankingPrompt(labels []string) string {
	return fmt.Sprintf(rankingPromptTemplate, rankingResponseSchema, strings.Join(labels, ", "))
}

func buildEntityPrompt() string {
	return fmt.Sprintf(entityPromptTemplate, entityResponseSchema)
}
