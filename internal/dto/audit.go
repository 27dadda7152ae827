package dto

// ── audit log DTO ──

// AuditLogListRequest journal filters.
type AuditLogListRequest struct {
	PaginationRequest
	Action    string `form:"action"    binding:"omitempty,max=20"`
	Matricule string `form:"matricule" binding:"omitempty,max=30"`
}

// AuditLogResponse journal entry.
type AuditLogResponse struct {
	ID         string `json:"id"`
	ActorEmail string `json:"actor_email"`
	Action     string `json:"action"`
	Matricule  string `json:"matricule,omitempty"`
	Details    string `json:"details,omitempty"`
	CreatedAt  string `json:"created_at"`
}
