package dto

// ── bulk import DTO ──

// ImportRow one data row of the spreadsheet, keyed by record field.
// DateNaissance keeps the raw cell text; numeric date cells arrive as their
// serial day number.
type ImportRow struct {
	Row              int
	Matricule        string
	Nom              string
	Prenoms          string
	Sexe             string
	DateNaissance    string
	LieuNaissance    string
	Grade            string
	Corps            string
	Discipline       string
	Etablissement    string
	Fonction         string
	Commune          string
	Statut           string
	Telephone        string
	DatePriseService string
}

// ImportResponse import report.
type ImportResponse struct {
	Total   int           `json:"total"`
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError rejected row.
type ImportError struct {
	Row       int    `json:"row"`
	Matricule string `json:"matricule,omitempty"`
	Reason    string `json:"reason"`
}
