package prompts

const captionSpec = `Respond with plain prose of three to six sentences.

Behavioral constraints:
- No markdown headings, lists, or code fences
- Describe only what is visible
- Never name the species`

const candidatesSpec = `Respond with a JSON object matching this exact structure:

{
  "image_contains_fish": true,
  "rejection_reason": "",
  "results": [
    {
      "fish_name": "<name from the allowed list>",
      "score": 0.0,
      "score_reason": "<visual evidence>"
    }
  ]
}

Field constraints:
- image_contains_fish: false when the image does not show a real fish specimen.
- rejection_reason: Short explanation when image_contains_fish is false.
  Empty string otherwise.
- results: Exactly five distinct entries sorted by score, highest first.
  Empty array when image_contains_fish is false.
- fish_name: Copied exactly from the allowed species list.
- score: Confidence between 0.0 and 1.0.
- score_reason: One sentence naming the visual features behind the score.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never invent species outside the allowed list`

const detailsSpec = `Respond with a JSON object matching this exact structure:

{
  "image_contains_fish": true,
  "rejection_reason": "",
  "fish_details": {
    "fish_name": "<common English name>",
    "scientific_name": "<Latin binomial>",
    "order_name": "<taxonomic order>",
    "physical_description": "<3-5 sentences>",
    "habitat": "<environment, depth, water type, behavior>"
  }
}

Field constraints:
- physical_description: Body shape, scale pattern, coloration, fin
  characteristics, and distinct anatomical features.
- habitat: Specific environments (coral reefs, mangroves, sandy bottoms),
  preferred depth, freshwater, brackish, or marine water, and schooling
  or solitary behavior.
- fish_details: Must be an empty object {} when image_contains_fish is
  false. Must be fully populated when it is true.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const generationSpec = `Respond in plain prose. Keep answers under 200 words unless the question asks for detail.`

var specs = map[Stage]string{
	StageCaption:    captionSpec,
	StageCandidates: candidatesSpec,
	StageDetails:    detailsSpec,
	StageGeneration: generationSpec,
}

// Spec returns the output contract for a prompt stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
