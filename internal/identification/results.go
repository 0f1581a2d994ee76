package identification

import (
	"encoding/json"

	"github.com/JaimeStill/marlin/internal/candidates"
)

// CaptionResult is the body of /image_captioning.
type CaptionResult struct {
	Caption string `json:"caption"`
}

// IdentifyResult is the body of /identify_and_search.
type IdentifyResult struct {
	InputImage string              `json:"input_image"`
	Caption    string              `json:"ai_generated_caption"`
	Results    []candidates.Record `json:"elasticsearch_results"`
}

// FishDetails describes one identified species.
type FishDetails struct {
	FishName            string `json:"fish_name"`
	ScientificName      string `json:"scientific_name"`
	OrderName           string `json:"order_name"`
	PhysicalDescription string `json:"physical_description"`
	Habitat             string `json:"habitat"`
}

// DetailsResult is the body of /image_identification.
type DetailsResult struct {
	ContainsSubject bool
	RejectionReason string
	Fish            FishDetails
}

// MarshalJSON writes fish_details as {} when the image holds no fish.
func (d DetailsResult) MarshalJSON() ([]byte, error) {
	var details any = d.Fish
	if !d.ContainsSubject {
		details = struct{}{}
	}
	return json.Marshal(struct {
		ImageContainsFish bool   `json:"image_contains_fish"`
		RejectionReason   string `json:"rejection_reason,omitempty"`
		FishDetails       any    `json:"fish_details"`
	}{
		ImageContainsFish: d.ContainsSubject,
		RejectionReason:   d.RejectionReason,
		FishDetails:       details,
	})
}
