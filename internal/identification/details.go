package identification

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/marlin/internal/candidates"
)

type detailsJSON struct {
	ImageContainsFish *bool        `json:"image_contains_fish"`
	RejectionReason   *string      `json:"rejection_reason"`
	FishDetails       *FishDetails `json:"fish_details"`
}

// ParseDetails validates a model's species details reply. A positive
// verdict must name a fish; the name is rewritten to the catalog spelling
// when the catalog knows it.
func ParseDetails(raw string, vocab candidates.Vocabulary) (DetailsResult, error) {
	payload, err := candidates.ExtractJSONPayload(raw)
	if err != nil {
		return DetailsResult{}, err
	}

	var doc detailsJSON
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return DetailsResult{}, fmt.Errorf("%w: %w", candidates.ErrSchemaViolation, err)
	}

	result := DetailsResult{ContainsSubject: true}
	if doc.ImageContainsFish != nil {
		result.ContainsSubject = *doc.ImageContainsFish
	}

	if !result.ContainsSubject {
		if doc.RejectionReason != nil {
			result.RejectionReason = strings.TrimSpace(*doc.RejectionReason)
		}
		return result, nil
	}

	if doc.FishDetails == nil || strings.TrimSpace(doc.FishDetails.FishName) == "" {
		return DetailsResult{}, fmt.Errorf("%w: fish_details missing for a positive verdict", candidates.ErrSchemaViolation)
	}

	result.Fish = *doc.FishDetails
	result.Fish.FishName = strings.TrimSpace(result.Fish.FishName)
	if name, ok := vocab.Canonical(result.Fish.FishName); ok {
		result.Fish.FishName = name
	}
	return result, nil
}
