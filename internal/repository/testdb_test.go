package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/repository"
)

// newTestRepo opens a private in-memory SQLite database with the schema.
func newTestRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.Teacher{}, &model.Admin{}, &model.AuditLog{}))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX uq_teachers_matricule ON teachers (matricule) WHERE deleted_at IS NULL",
	).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return repository.NewRepository(db), db
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedTeacher(t *testing.T, repo *repository.Repository, mutate func(*model.Teacher)) *model.Teacher {
	t.Helper()
	teacher := &model.Teacher{
		Matricule:     uuid.NewString()[:8],
		Nom:           "AHOUNOU",
		Prenoms:       "Koffi",
		Sexe:          model.SexeMale,
		DateNaissance: "11/08/1990",
		Grade:         "A1-1",
		Etablissement: "Lycée Technique de Dassa",
	}
	if mutate != nil {
		mutate(teacher)
	}
	require.NoError(t, repo.Teacher.Create(context.Background(), teacher))
	return teacher
}
