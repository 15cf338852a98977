package util

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateRandomNumber generates a random number between min and max (inclusive)
func GenerateRandomNumber(min, max int) int {
	// Seed with current time to ensure randomness
	rand.Seed(time.Now().UnixNano())
	return min + rand.Intn(max-min+1)
}

// GenerateOrderNumber produces a human-readable order number in the form
// LM-NNNNNN. Uniqueness is enforced by the caller against the orders table.
func GenerateOrderNumber() string {
	return fmt.Sprintf("LM-%06d", GenerateRandomNumber(0, 999999))
}
