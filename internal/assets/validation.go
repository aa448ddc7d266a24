package assets

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
)

// CategoryChecker reports whether a category exists.
type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// validationStep inspects req and records failures in fields. A returned error
// aborts validation and is surfaced as an internal failure.
type validationStep func(ctx context.Context, req *CreateAssetRequest, fields httpx.FieldErrors) error

// forField skips check once field already carries an error.
func forField(field string, check func(ctx context.Context, req *CreateAssetRequest) (string, error)) validationStep {
	return func(ctx context.Context, req *CreateAssetRequest, fields httpx.FieldErrors) error {
		if fields.Has(field) {
			return nil
		}
		msg, err := check(ctx, req)
		if err != nil {
			return err
		}
		if msg != "" {
			fields.Add(field, msg)
		}
		return nil
	}
}

func normalize(_ context.Context, req *CreateAssetRequest, _ httpx.FieldErrors) error {
	req.Patrimonio = httpx.NormalizeText(req.Patrimonio)
	for i := range req.FieldValues {
		req.FieldValues[i].Field = httpx.NormalizeText(req.FieldValues[i].Field)
	}
	return nil
}

func structTags(v *validator.Validate) validationStep {
	return func(_ context.Context, req *CreateAssetRequest, fields httpx.FieldErrors) error {
		return httpx.ValidateStruct(v, req, fields)
	}
}

func categoryExists(categories CategoryChecker) validationStep {
	return forField("category", func(ctx context.Context, req *CreateAssetRequest) (string, error) {
		ok, err := categories.Exists(ctx, req.Category)
		if err != nil {
			return "", err
		}
		if !ok {
			return invalidPK(req.Category), nil
		}
		return "", nil
	})
}

func patrimonioUnique(repo Repository) validationStep {
	return forField("patrimonio", func(ctx context.Context, req *CreateAssetRequest) (string, error) {
		taken, err := repo.PatrimonioExists(ctx, req.Patrimonio)
		if err != nil {
			return "", err
		}
		if taken {
			return MsgPatrimonioTaken, nil
		}
		return "", nil
	})
}

// pipeline builds the ordered create validation.
func pipeline(v *validator.Validate, repo Repository, categories CategoryChecker) []validationStep {
	return []validationStep{
		normalize,
		structTags(v),
		categoryExists(categories),
		patrimonioUnique(repo),
	}
}

func runPipeline(ctx context.Context, steps []validationStep, req *CreateAssetRequest) error {
	fields := httpx.FieldErrors{}
	for _, step := range steps {
		if err := step(ctx, req, fields); err != nil {
			return err
		}
	}
	if len(fields) > 0 {
		return &httpx.ValidationError{Fields: fields}
	}
	return nil
}
