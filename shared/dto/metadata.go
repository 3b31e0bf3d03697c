package dto

import (
	"stagehand/shared/model"
	"stagehand/shared/timezone"
)

// Metadata is the audit block embedded in every resource response. Timestamps are UTC instants
// in the same layout the API uses for event times.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(metadata model.Metadata) {
	m.CreatedAt = timezone.FormatInstant(metadata.CreatedAt)
	m.CreatedBy = metadata.CreatedBy

	if !metadata.ModifiedAt.IsZero() {
		m.ModifiedAt = timezone.FormatInstant(metadata.ModifiedAt)
	}

	m.ModifiedBy = metadata.ModifiedBy
}
