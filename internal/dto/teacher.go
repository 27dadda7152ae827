package dto

// ── teacher records DTO ──

// TeacherListRequest directory filters.
type TeacherListRequest struct {
	PaginationRequest
	Search          string `form:"search"           binding:"omitempty,max=100"`
	Category        string `form:"category"         binding:"omitempty,max=3"` // "All" or a grade letter
	IncludeArchived bool   `form:"include_archived"`
	College         *bool  `form:"college"`
}

// CreateTeacherRequest new record. DateNaissance accepts the same shapes as
// the spreadsheet column: DD/MM/YYYY, YYYY-MM-DD or a serial day number.
type CreateTeacherRequest struct {
	Matricule        string `json:"matricule"          binding:"required,max=30"`
	Nom              string `json:"nom"                binding:"required,max=100"`
	Prenoms          string `json:"prenoms"            binding:"omitempty,max=150"`
	Sexe             string `json:"sexe"               binding:"omitempty,oneof=M F"`
	DateNaissance    string `json:"date_naissance"     binding:"omitempty,max=30"`
	LieuNaissance    string `json:"lieu_naissance"     binding:"omitempty,max=100"`
	Grade            string `json:"grade"              binding:"omitempty,max=20"`
	Corps            string `json:"corps"              binding:"omitempty,max=50"`
	Discipline       string `json:"discipline"         binding:"omitempty,max=100"`
	Etablissement    string `json:"etablissement"      binding:"omitempty,max=150"`
	Fonction         string `json:"fonction"           binding:"omitempty,max=100"`
	Commune          string `json:"commune"            binding:"omitempty,max=100"`
	Statut           string `json:"statut"             binding:"omitempty,max=50"`
	Telephone        string `json:"telephone"          binding:"omitempty,max=30"`
	DatePriseService string `json:"date_prise_service" binding:"omitempty,max=30"`
}

// UpdateTeacherRequest partial update; nil fields are left untouched.
type UpdateTeacherRequest struct {
	Version          int     `json:"version"            binding:"required,min=1"`
	Matricule        *string `json:"matricule"          binding:"omitempty,min=1,max=30"`
	Nom              *string `json:"nom"                binding:"omitempty,min=1,max=100"`
	Prenoms          *string `json:"prenoms"            binding:"omitempty,max=150"`
	Sexe             *string `json:"sexe"               binding:"omitempty,oneof=M F"`
	DateNaissance    *string `json:"date_naissance"     binding:"omitempty,max=30"`
	LieuNaissance    *string `json:"lieu_naissance"     binding:"omitempty,max=100"`
	Grade            *string `json:"grade"              binding:"omitempty,max=20"`
	Corps            *string `json:"corps"              binding:"omitempty,max=50"`
	Discipline       *string `json:"discipline"         binding:"omitempty,max=100"`
	Etablissement    *string `json:"etablissement"      binding:"omitempty,max=150"`
	Fonction         *string `json:"fonction"           binding:"omitempty,max=100"`
	Commune          *string `json:"commune"            binding:"omitempty,max=100"`
	Statut           *string `json:"statut"             binding:"omitempty,max=50"`
	Telephone        *string `json:"telephone"          binding:"omitempty,max=30"`
	DatePriseService *string `json:"date_prise_service" binding:"omitempty,max=30"`
}

// ArchiveTeacherRequest archive or restore.
type ArchiveTeacherRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// TeacherResponse record as shown in the directory.
type TeacherResponse struct {
	ID               string `json:"id"`
	Matricule        string `json:"matricule"`
	Nom              string `json:"nom"`
	Prenoms          string `json:"prenoms"`
	Sexe             string `json:"sexe"`
	DateNaissance    string `json:"date_naissance"`
	LieuNaissance    string `json:"lieu_naissance"`
	Grade            string `json:"grade"`
	Category         string `json:"category"`
	Corps            string `json:"corps"`
	Discipline       string `json:"discipline"`
	Etablissement    string `json:"etablissement"`
	Fonction         string `json:"fonction"`
	Commune          string `json:"commune"`
	Statut           string `json:"statut"`
	Telephone        string `json:"telephone"`
	DatePriseService string `json:"date_prise_service"`
	DateRetraite     string `json:"date_retraite,omitempty"` // YYYY-MM-DD, absent when undetermined
	IsCollege        bool   `json:"is_college"`
	IsArchived       bool   `json:"is_archived"`
	Version          int    `json:"version"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// RecomputeResponse outcome of a bulk retirement recomputation.
type RecomputeResponse struct {
	Total        int            `json:"total"`
	Determined   int            `json:"determined"`
	Undetermined int            `json:"undetermined"`
	Changed      int            `json:"changed"`
	ByReason     map[string]int `json:"by_reason,omitempty"`
}

// InferGendersResponse number of records switched to F.
type InferGendersResponse struct {
	Corrected  int      `json:"corrected"`
	Matricules []string `json:"matricules,omitempty"`
}

// ── retirement preview ──

// RetirementPreviewRequest stateless calculator call. DateNaissance is kept
// raw so that spreadsheet serials arrive as JSON numbers.
type RetirementPreviewRequest struct {
	DateNaissance interface{} `json:"date_naissance"`
	Grade         string      `json:"grade"         binding:"omitempty,max=20"`
	Etablissement string      `json:"etablissement" binding:"omitempty,max=150"`
}

// RetirementPreviewResponse calculator outcome.
type RetirementPreviewResponse struct {
	Determined    bool   `json:"determined"`
	DateRetraite  string `json:"date_retraite,omitempty"`
	Reason        string `json:"reason"`
	Detail        string `json:"detail,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	Anniversary   string `json:"anniversary,omitempty"`
	Category      string `json:"category"`
	RetirementAge int    `json:"retirement_age"`
	IsCollege     bool   `json:"is_college"`
	Clamped       bool   `json:"clamped,omitempty"`
}
