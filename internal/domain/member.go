package domain

import "time"

type Member struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name"`
	Active            bool       `json:"active"`
	Profile           Profile    `json:"profile"`
	ApprovalsInWindow int32      `json:"approvals_in_window"`
	LastApprovalAt    *time.Time `json:"last_approval_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
