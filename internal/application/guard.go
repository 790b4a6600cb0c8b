package application

import (
	"github.com/personakit/go-persona/internal/domain"
)

// CheckComplete verifies that every question in the catalog has an
// answer in the response set.
// CheckComplete returns a *domain.IncompleteTestError listing the
// unanswered question IDs in catalog declaration order, or nil when
// the set is complete. Extra answers for questions outside the catalog
// do not affect completeness.
func CheckComplete(catalog *domain.Catalog, responses domain.ResponseSet) error {
	var missing []domain.QuestionID
	for _, question := range catalog.Questions() {
		if !responses.Answered(question.ID) {
			missing = append(missing, question.ID)
		}
	}

	if len(missing) > 0 {
		return &domain.IncompleteTestError{Missing: missing}
	}
	return nil
}
