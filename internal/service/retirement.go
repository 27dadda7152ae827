package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/NarcisseDedome/gestionpersonnel/internal/dto"
	"github.com/NarcisseDedome/gestionpersonnel/internal/model"
	"github.com/NarcisseDedome/gestionpersonnel/internal/retirement"
	"github.com/NarcisseDedome/gestionpersonnel/pkg/metrics"
)

// retirementEvaluator runs the calculator for records and reports each
// outcome to the logs and metrics.
type retirementEvaluator struct {
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newRetirementEvaluator(m *metrics.Metrics, logger *zap.Logger) *retirementEvaluator {
	return &retirementEvaluator{metrics: m, logger: logger}
}

// rawBirthDate hands stored birth date text to the calculator as typed.
// Spreadsheet serials are rewritten as YYYY-MM-DD by the import, so numeric
// text here is a year such as "1990".
func rawBirthDate(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// evaluate computes the retirement date of raw inputs.
func (e *retirementEvaluator) evaluate(matricule string, birthDate any, grade, establishment string) retirement.Result {
	res := retirement.Calculate(birthDate, grade, establishment)
	e.metrics.IncrementRetirement(res.Reason.String())

	fields := []zap.Field{
		zap.String("matricule", matricule),
		zap.Any("date_naissance", birthDate),
		zap.String("reason", res.Reason.String()),
		zap.String("detail", res.Detail),
	}
	switch res.Reason {
	case retirement.ReasonNone:
		if res.Clamped {
			e.logger.Warn("birth year clamped", append(fields, zap.Time("birth_date", res.BirthDate))...)
		}
	case retirement.ReasonMissingInput:
		e.logger.Info("retirement date undetermined", fields...)
	case retirement.ReasonUnparseableDate:
		e.logger.Warn("retirement date undetermined", fields...)
	case retirement.ReasonInternalError:
		e.logger.Error("retirement calculation failed", fields...)
	}
	return res
}

// apply recomputes the derived columns of t and reports whether they changed.
func (e *retirementEvaluator) apply(t *model.Teacher) (retirement.Result, bool) {
	res := e.evaluate(t.Matricule, rawBirthDate(t.DateNaissance), t.Grade, t.Etablissement)

	next := res.DatePtr()
	college := retirement.IsCollege(t.Etablissement)
	changed := college != t.IsCollege || !sameDate(next, t.DateRetraite)

	t.DateRetraite = next
	t.IsCollege = college
	return res, changed
}

// preview answers a stateless calculator call.
func (e *retirementEvaluator) preview(req *dto.RetirementPreviewRequest) *dto.RetirementPreviewResponse {
	res := e.evaluate("", req.DateNaissance, req.Grade, req.Etablissement)
	category := retirement.CategoryOf(req.Grade)

	out := &dto.RetirementPreviewResponse{
		Determined:    res.Determined(),
		DateRetraite:  res.DateString(),
		Reason:        res.Reason.String(),
		Detail:        res.Detail,
		Category:      retirement.Letter(req.Grade),
		RetirementAge: category.RetirementAge(),
		IsCollege:     retirement.IsCollege(req.Etablissement),
		Clamped:       res.Clamped,
	}
	if res.Determined() {
		out.BirthDate = res.BirthDate.Format(retirement.DateLayout)
		out.Anniversary = res.Anniversary.Format(retirement.DateLayout)
	}
	return out
}
