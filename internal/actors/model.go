package actors

import "time"

// Actor roles. Admins receive escalation broadcasts.
const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
	RoleClient    = "client"
)

// Actor represents a human participant in the pipeline.
type Actor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
