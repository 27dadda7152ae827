package model

import (
	"time"

	"gorm.io/gorm"
)

// Gender codes stored in Teacher.Sexe.
const (
	SexeMale   = "M"
	SexeFemale = "F"
)

// Teacher personnel record — table teachers.
//
// DateNaissance and DatePriseService keep the text exactly as supplied
// (spreadsheet serial, DD/MM/YYYY or ISO). DateRetraite and IsCollege are
// derived and rewritten on every change of birth date, grade or
// establishment.
type Teacher struct {
	TeacherID        string     `gorm:"type:uuid;primaryKey"                json:"teacher_id"`
	Matricule        string     `gorm:"type:varchar(30);not null;index"     json:"matricule"`
	Nom              string     `gorm:"type:varchar(100);not null;index"    json:"nom"`
	Prenoms          string     `gorm:"type:varchar(150);not null;default:''" json:"prenoms"`
	Sexe             string     `gorm:"type:char(1);not null;default:'M'"   json:"sexe"`
	DateNaissance    string     `gorm:"type:varchar(30);not null;default:''" json:"date_naissance"`
	LieuNaissance    string     `gorm:"type:varchar(100);not null;default:''" json:"lieu_naissance"`
	Grade            string     `gorm:"type:varchar(20);not null;default:''" json:"grade"`
	Corps            string     `gorm:"type:varchar(50);not null;default:''" json:"corps"`
	Discipline       string     `gorm:"type:varchar(100);not null;default:''" json:"discipline"`
	Etablissement    string     `gorm:"type:varchar(150);not null;default:''" json:"etablissement"`
	Fonction         string     `gorm:"type:varchar(100);not null;default:''" json:"fonction"`
	Commune          string     `gorm:"type:varchar(100);not null;default:''" json:"commune"`
	Statut           string     `gorm:"type:varchar(50);not null;default:''" json:"statut"`
	Telephone        string     `gorm:"type:varchar(30);not null;default:''" json:"telephone"`
	DatePriseService string     `gorm:"type:varchar(30);not null;default:''" json:"date_prise_service"`
	DateRetraite     *time.Time `gorm:"type:date;index"                     json:"date_retraite"`
	IsCollege        bool       `gorm:"not null;default:false"              json:"is_college"`
	IsArchived       bool       `gorm:"not null;default:false"              json:"is_archived"`
	VersionedModel
}

// TableName table name.
func (Teacher) TableName() string { return "teachers" }

// BeforeCreate assigns the primary key.
func (t *Teacher) BeforeCreate(*gorm.DB) error {
	newID(&t.TeacherID)
	if t.Version == 0 {
		t.Version = 1
	}
	return nil
}
