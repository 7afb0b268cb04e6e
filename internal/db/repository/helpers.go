// Package repository implements domain repository interfaces using SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"gatecheck/internal/db/dbstore"
	"gatecheck/internal/domain"
)

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func userFromDB(row dbstore.User) *domain.User {
	return &domain.User{
		ID:        row.ID,
		Username:  row.Username,
		Email:     stringPtr(row.Email),
		IsAdmin:   row.IsAdmin != 0,
		CreatedAt: row.CreatedAt,
	}
}

func groupFromDB(row dbstore.Group) *domain.Group {
	return &domain.Group{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
}

func projectFromDB(row dbstore.Project) *domain.Project {
	return &domain.Project{
		ID:        row.ID,
		AuthID:    row.AuthID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	}
}

func registrationFromDB(row dbstore.ServiceAccountRegistration) *domain.ServiceAccountRegistration {
	return &domain.ServiceAccountRegistration{
		ID:             row.ID,
		CloudProjectID: row.CloudProjectID,
		AccountEmail:   row.AccountEmail,
		ExpiresAt:      time.Unix(row.ExpiresAt, 0),
		CreatedAt:      row.CreatedAt,
	}
}

func privilegeFromDB(row dbstore.AccessPrivilege) *domain.AccessPrivilege {
	return &domain.AccessPrivilege{
		UserID:          row.UserID,
		ProjectID:       row.ProjectID,
		Privilege:       row.Privilege,
		DirectPrivilege: stringPtr(row.DirectPrivilege),
	}
}
