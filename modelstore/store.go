package modelstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

const modelNamePrefix = "trained_model_"

var (
	ErrModelNotFound = errors.New("model not found")
	ErrInvalidName   = errors.New("invalid model name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Store saves and loads bundles by name.
type Store interface {
	Save(ctx context.Context, name string, b *Bundle) error
	Load(ctx context.Context, name string) (*Bundle, error)

	// Latest returns the lexically greatest model name and its bundle. With names from
	// ModelName this is the most recently trained model.
	Latest(ctx context.Context) (string, *Bundle, error)

	// List returns every stored model name in ascending order.
	List(ctx context.Context) ([]string, error)
}

// ModelName returns the conventional name of a model trained on the date of t, such as
// trained_model_20241106.
func ModelName(t time.Time) string {
	return modelNamePrefix + t.UTC().Format("20060102")
}

func validateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%q, %w", name, ErrInvalidName)
	}
	return nil
}
