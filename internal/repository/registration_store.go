package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

// RegistrationStore creates a student together with its login.
type RegistrationStore struct {
	db *sqlx.DB
}

// NewRegistrationStore constructs a RegistrationStore.
func NewRegistrationStore(db *sqlx.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

// Register inserts the student and the user in one transaction and links the user to the student.
func (s *RegistrationStore) Register(ctx context.Context, student *models.Student, user *models.User) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = NewStudentRepository(tx).Create(ctx, student); err != nil {
		return err
	}
	user.StudentID = &student.ID
	if err = NewUserRepository(tx).Create(ctx, user); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

// Remove soft deletes the student and disables its login in one transaction.
func (s *RegistrationStore) Remove(ctx context.Context, studentID int64) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin removal transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = NewStudentRepository(tx).SoftDelete(ctx, studentID); err != nil {
		return err
	}
	if err = NewUserRepository(tx).DeactivateByStudent(ctx, studentID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit removal: %w", err)
	}
	return nil
}
