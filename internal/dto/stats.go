package dto

// ── dashboard DTO ──

// StatsResponse dashboard figures over active (non archived) records.
type StatsResponse struct {
	Total               int               `json:"total"`
	Categories          []CategoryStat    `json:"categories"`
	Genders             GenderStat        `json:"genders"`
	Colleges            int               `json:"colleges"`
	RetiringThisYear    int               `json:"retiring_this_year"`
	Alerts              []Alert           `json:"alerts"`
	AuditEntriesToday   int               `json:"audit_entries_today"`
	UpcomingRetirements []UpcomingRetiree `json:"upcoming_retirements"`
	GeneratedAt         string            `json:"generated_at"`
}

// CategoryStat headcount of one grade letter.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Percent  string `json:"percent"` // one decimal place, e.g. "33.3"
}

// GenderStat headcount per gender.
type GenderStat struct {
	M int `json:"M"`
	F int `json:"F"`
}

// Alert kinds.
const (
	AlertImminentRetirement = "retraite_imminente"
	AlertIncompleteRecord   = "dossier_incomplet"
)

// Alert one dashboard warning.
type Alert struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// UpcomingRetiree teacher retiring within the alert window.
type UpcomingRetiree struct {
	ID            string `json:"id"`
	Matricule     string `json:"matricule"`
	Nom           string `json:"nom"`
	Prenoms       string `json:"prenoms"`
	Etablissement string `json:"etablissement"`
	DateRetraite  string `json:"date_retraite"`
}
