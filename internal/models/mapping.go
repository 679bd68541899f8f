package models

import (
	"fmt"
	"time"
)

// ProviderModel identifies a model inside one inference provider's namespace
type ProviderModel struct {
	InferenceProvider string `db:"inference_provider" json:"inference_provider"`
	ProviderSlug      string `db:"provider_slug" json:"provider_slug"`
}

// String renders the pair as provider:slug
func (p ProviderModel) String() string {
	return fmt.Sprintf("%s:%s", p.InferenceProvider, p.ProviderSlug)
}

// MappingRecord links a provider model to an Artificial Analysis slug (ims.10_model_aa_mapping)
type MappingRecord struct {
	ProviderSlug      string    `db:"provider_slug" json:"provider_slug"`
	AASlug            string    `db:"aa_slug" json:"aa_slug"`
	InferenceProvider string    `db:"inference_provider" json:"inference_provider"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// MappingColumns lists the mapping table columns in insert order
var MappingColumns = []string{
	"provider_slug", "aa_slug", "inference_provider", "created_at", "updated_at",
}
