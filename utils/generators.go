package utils

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	// CodeCharset is the alphabet for human-facing bill share codes.
	CodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength  = 6
)

// GenerateID generates a unique ID for entities
func GenerateID() string {
	return uuid.New().String()
}

// GenerateCode generates a random bill share code
func GenerateCode() string {
	result := make([]byte, CodeLength)
	for i := range result {
		result[i] = CodeCharset[rand.Intn(len(CodeCharset))]
	}
	return string(result)
}
