package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewDocID returns a new document id of the form "doc_xxxxxxxxxxxx".
func NewDocID() string {
	return "doc_" + mustNanoID()
}

// NewJobID returns a new ingestion job id of the form "job_xxxxxxxxxxxx".
func NewJobID() string {
	return "job_" + mustNanoID()
}

// NewViewID returns a new saved-view id of the form "view_xxxxxxxxxxxx".
func NewViewID() string {
	return "view_" + mustNanoID()
}

func mustNanoID() string {
	id, err := gonanoid.Generate(idAlphabet, 12)
	if err != nil {
		// gonanoid only fails when the platform RNG is broken.
		panic(err)
	}
	return id
}
