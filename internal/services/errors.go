package services

import (
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
)

var (
	// Accounts
	ErrEmailTaken         = apierrors.New(apierrors.KindConflict, apierrors.ErrCodeAlreadyExists, "Email is already registered")
	ErrInvalidCredentials = apierrors.New(apierrors.KindUnauthorized, apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
	ErrInvalidToken       = apierrors.New(apierrors.KindUnauthorized, apierrors.ErrCodeInvalidToken, "Invalid or expired token")
	ErrPasswordTooShort   = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Password is too short")
	ErrPasswordTooLong    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Password must be at most 72 bytes")
	ErrUserNotFound       = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "User not found")
	ErrTierNotFound       = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Tier not found")
	ErrNoTierConfigured   = apierrors.New(apierrors.KindConfiguration, apierrors.ErrCodeConfiguration, "No tier is configured; seed the tier table")

	// Identity
	ErrMissingCredential = apierrors.New(apierrors.KindUnauthorized, apierrors.ErrCodeUnauthorized, "Authentication required")
	ErrInvalidSession    = apierrors.New(apierrors.KindUnauthorized, apierrors.ErrCodeInvalidToken, "Invalid or expired session")
	ErrProviderFailure   = apierrors.New(apierrors.KindExternal, apierrors.ErrCodeExternalService, "Identity provider request failed")
	ErrProfileLookup     = apierrors.New(apierrors.KindExternal, apierrors.ErrCodeExternalService, "Failed to fetch user profile from identity provider")
	ErrProfileNoEmail    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeMissingField, "Identity provider returned no email address")

	// Projects
	ErrProjectNotFound       = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Project not found")
	ErrNotProjectMember      = apierrors.New(apierrors.KindForbidden, apierrors.ErrCodeForbidden, "You are not a member of this project")
	ErrNotProjectOwner       = apierrors.New(apierrors.KindForbidden, apierrors.ErrCodeInsufficientPermissions, "Only the project owner can do this")
	ErrInvalidInviteCode     = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Invalid invite code")
	ErrAlreadyProjectMember  = apierrors.New(apierrors.KindConflict, apierrors.ErrCodeAlreadyExists, "You are already a member of this project")
	ErrCannotRemoveYourself  = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidOperation, "You cannot remove yourself from the project")
	ErrCannotRemoveOwner     = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidOperation, "The project owner cannot be removed")
	ErrProjectMemberNotFound = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Project member not found")
	ErrInviteCodeGeneration  = apierrors.New(apierrors.KindInternal, apierrors.ErrCodeInternalError, "Failed to generate invite code")

	// Tasks
	ErrTaskNotFound         = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Task not found")
	ErrColumnNotFound       = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Column does not belong to this project")
	ErrAssigneeNotMember    = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Assignee is not a member of this project")
	ErrAssigneeTierTooLow   = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidOperation, "Assignee does not meet the required tier")
	ErrInvalidStatus        = apierrors.New(apierrors.KindValidation, apierrors.ErrCodeInvalidInput, "Invalid task status")
	ErrNotTaskCreator       = apierrors.New(apierrors.KindForbidden, apierrors.ErrCodeInsufficientPermissions, "Only the creator or project owner can do this")
	ErrTaskGenerationFailed = apierrors.New(apierrors.KindExternal, apierrors.ErrCodeExternalService, "Failed to generate tasks")
	ErrAIUnavailable        = apierrors.New(apierrors.KindUnavailable, apierrors.ErrCodeServiceUnavailable, "Task generation is not configured")

	// Store
	ErrItemNotFound      = apierrors.New(apierrors.KindNotFound, apierrors.ErrCodeNotFound, "Store item not found")
	ErrInsufficientFunds = apierrors.New(apierrors.KindConflict, apierrors.ErrCodeInsufficientFunds, "Balance is too low for this item")
)

// wrapInternal wraps an unexpected failure of an operation.
func wrapInternal(message string, err error) error {
	return apierrors.Wrap(apierrors.KindInternal, apierrors.ErrCodeInternalError, message, err)
}
