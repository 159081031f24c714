package domain

import "time"

// Credencial is the login credential provisioned by the activation flow.
// Usuario is the agent's legajo rendered as string, guaranteeing uniqueness.
type Credencial struct {
	ID        int64
	Usuario   string
	Email     *string
	Hash      string
	CreatedAt time.Time
}
