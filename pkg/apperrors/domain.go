package apperrors

import "net/http"

// =========================================================================
// Factories
// =========================================================================

// ErrNotFound wraps a repository not-found sentinel.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// =========================================================================
// Predefined errors
// =========================================================================

// --- Auth & account ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

// ErrUserBanned is returned on every authenticated request of a banned
// account; clients sign out when they see it.
var ErrUserBanned = New(
	CodeAccountBanned,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

var ErrFileRequired = New(
	CodeValidationFailed,
	"validation",
	"A file is required",
	http.StatusBadRequest,
)

// --- Barters ---

var ErrSelfBarter = New(
	CodeInvalidOperation,
	"barter",
	"You cannot send a barter request to yourself",
	http.StatusBadRequest,
)

var ErrNotBarterParticipant = New(
	CodeForbidden,
	"barter",
	"You are not a participant of this barter",
	http.StatusForbidden,
)

var ErrOnlyRecipient = New(
	CodeForbidden,
	"barter",
	"Only the recipient can respond to this request",
	http.StatusForbidden,
)

var ErrOnlyRequester = New(
	CodeForbidden,
	"barter",
	"Only the requester can cancel this request",
	http.StatusForbidden,
)

var ErrInvalidBarterTransition = New(
	CodeInvalidStatus,
	"barter",
	"This status change is not allowed",
	http.StatusConflict,
)

// --- Chat ---

var ErrMessagingNotAllowed = New(
	CodeInvalidStatus,
	"chat",
	"Messaging is only available for accepted barters",
	http.StatusConflict,
)

var ErrEmptyMessage = New(
	CodeValidationFailed,
	"chat",
	"Message must contain text or an attachment",
	http.StatusBadRequest,
)

var ErrMeetingInPast = New(
	CodeValidationFailed,
	"chat",
	"Meeting must be scheduled in the future",
	http.StatusBadRequest,
)

var ErrInvalidMeeting = New(
	CodeValidationFailed,
	"chat",
	"Meeting title, date and time are required",
	http.StatusBadRequest,
)

// --- Ratings ---

var ErrSelfRating = New(
	CodeInvalidOperation,
	"rating",
	"You cannot rate yourself",
	http.StatusBadRequest,
)

var ErrRatingRequiresCompletedBarter = New(
	CodeInvalidOperation,
	"rating",
	"Ratings require a completed barter between both members",
	http.StatusConflict,
)

var ErrAlreadyRated = New(
	CodeAlreadyExists,
	"rating",
	"You have already rated this barter",
	http.StatusConflict,
)

// --- Reports ---

var ErrSelfReport = New(
	CodeInvalidOperation,
	"report",
	"You cannot report yourself",
	http.StatusBadRequest,
)

var ErrInvalidReportTransition = New(
	CodeInvalidStatus,
	"report",
	"This report status change is not allowed",
	http.StatusConflict,
)

// --- Profile ---

var ErrProfileNotFound = New(
	CodeNotFound,
	"profile",
	"Profile not found",
	http.StatusNotFound,
)

var ErrSelfFavorite = New(
	CodeInvalidOperation,
	"favorite",
	"You cannot favorite your own profile",
	http.StatusBadRequest,
)
