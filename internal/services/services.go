// Package services implements the shop's workflows on top of the ledger:
// checkout, repair jobs, due collection, inventory, users and settings.
package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/metrics"
)

// Deps is shared by every service.
type Deps struct {
	Ledger  *ledger.Ledger
	Metrics *metrics.Metrics
	Log     *slog.Logger
	Now     func() time.Time
	NewID   func() string
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func billNumber(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, at.UnixMilli())
}

// matcher does case-insensitive substring search over record fields.
type matcher struct {
	term  string
	caser cases.Caser
}

func newMatcher(term string) *matcher {
	c := cases.Fold()
	return &matcher{term: c.String(strings.TrimSpace(term)), caser: c}
}

func (m *matcher) match(fields ...string) bool {
	if m.term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(m.caser.String(f), m.term) {
			return true
		}
	}
	return false
}
