package domain

import "errors"

var (
	// ErrMissingIdentity signals a source record whose uuid cannot be resolved.
	ErrMissingIdentity = errors.New("missing card identity")
	// ErrInvalidRequest signals a malformed search or suggestion request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDocumentNotFound signals a missing indexed document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrCardNotFound signals a missing catalog record.
	ErrCardNotFound = errors.New("card not found")
	// ErrIndexNotFound signals a missing search index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexExists signals an already-created search index.
	ErrIndexExists = errors.New("index already exists")
	// ErrEmbeddingProviderError signals an upstream embedding API failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingNotConfigured signals a similarity query without an
	// embedding provider wired in.
	ErrEmbeddingNotConfigured = errors.New("embedding provider not configured")
)
