// internal/types/family.go
package types

import "time"

type FamilyMember struct {
	AgentID AgentID `json:"agent_id"`
	Role    string  `json:"role"`
	Order   int     `json:"order"`
}

// Family groups agents into a named collaborative unit.
type Family struct {
	ID          FamilyID       `json:"id"`
	Name        string         `json:"name"`
	Emoji       string         `json:"emoji"`
	Description string         `json:"description"`
	Members     []FamilyMember `json:"members"`
	CreatedAt   time.Time      `json:"created_at"`
}
