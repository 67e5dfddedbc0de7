package models

import "github.com/google/uuid"

// ensureID assigns a new UUID when id is empty.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
