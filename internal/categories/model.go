package categories

import "time"

// Category groups assets. It must exist before an asset references it.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryRequest is the accepted create payload.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}
