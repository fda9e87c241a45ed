package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable wraps every failure to obtain an embedding: transport,
	// status, decoding and size validation. Callers never receive a zero vector instead.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationFailure wraps every failure of a text-generation backend.
	ErrGenerationFailure = errors.New("generation failure")
)

func fmtUnavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEmbeddingUnavailable, fmt.Sprintf(format, args...))
}

func wrapUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrEmbeddingUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
}

func wrapGeneration(err error) error {
	if err == nil || errors.Is(err, ErrGenerationFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailure, err)
}
