package service

import (
	"errors"

	"github.com/techtimeoff/leave-service/internal/repository"
	apperrors "github.com/techtimeoff/leave-service/pkg/util"
)

// mapRepoError translates storage sentinels into API errors.
func mapRepoError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewDuplicateEmail()
	case errors.Is(err, repository.ErrDuplicateEmployeeID):
		return apperrors.NewDuplicateIdentifier("employeeId")
	case errors.Is(err, repository.ErrDuplicateProviderID):
		return apperrors.NewConflict("external identity is linked to another account", nil)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}
