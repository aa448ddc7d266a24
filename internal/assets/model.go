package assets

import "time"

// Asset is an inventory item identified by its patrimonio tag.
type Asset struct {
	ID          int64        `json:"id"`
	Patrimonio  string       `json:"patrimonio"`
	CategoryID  int64        `json:"category"`
	OwnerID     int64        `json:"owner"`
	FieldValues []FieldValue `json:"field_values"`
	CreatedAt   time.Time    `json:"created_at"`
}

// FieldValue is one dynamic attribute of an asset, kept in submission order.
type FieldValue struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CreateAssetRequest is the accepted create payload. Owner is never read
// from the client.
type CreateAssetRequest struct {
	Patrimonio  string            `json:"patrimonio" validate:"notblank,max=100"`
	Category    int64             `json:"category" validate:"required"`
	FieldValues []FieldValueInput `json:"field_values" validate:"max=200,dive"`
}

// FieldValueInput is a submitted field value.
type FieldValueInput struct {
	Field string `json:"field" validate:"notblank,max=100"`
	Value string `json:"value" validate:"max=1000"`
}
