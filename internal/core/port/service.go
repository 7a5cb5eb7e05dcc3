// Package port file: internal/core/port/service.go
package port

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/tableview"
	"context"
)

// ScreenRegistry resolves screen definitions and their compiled columns.
type ScreenRegistry interface {
	Screen(name string) (*domain.ScreenDefinition, []tableview.Column, error)
	ScreenNames() []string
}

// RowSource loads the unfiltered rows of a screen for a scope.
type RowSource interface {
	Rows(ctx context.Context, def *domain.ScreenDefinition, scope Scope) ([]tableview.Row, error)
}

// Mailer delivers a notification by e-mail. Implementations may be no-ops.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// ViewInvalidator drops cached view rows after a write touching the given datasets.
type ViewInvalidator interface {
	InvalidateDatasets(datasets ...string)
}
