package code

// HTTP status codes used by the maps below.
const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
)

// Common error codes (100xxx).
const (
	// ErrSuccess - 200: OK.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: internal server error.
	ErrUnknown
	// ErrBind - 400: request body binding failed.
	ErrBind
	// ErrValidation - 400: request parameter validation failed.
	ErrValidation
	// ErrTokenInvalid - 401: invalid or expired token.
	ErrTokenInvalid
	// ErrUnauthorized - 403: operation outside the caller's scope.
	ErrUnauthorized
	// ErrTooManyRequests - 429: rate limit exceeded.
	ErrTooManyRequests
)

// User error codes (101xxx).
const (
	// ErrUserNotFound - 404: user does not exist.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 409: email already registered.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: wrong credentials.
	ErrUserPasswordIncorrect
	// ErrUserInactive - 403: account deactivated.
	ErrUserInactive
)

// Device error codes (102xxx).
const (
	// ErrDeviceNotFound - 404: device does not exist.
	ErrDeviceNotFound int = iota + 102000
	// ErrDeviceAlreadyExist - 409: device number already used in the company.
	ErrDeviceAlreadyExist
	// ErrDeviceInactive - 400: device is deactivated.
	ErrDeviceInactive
)

// Company error codes (103xxx).
const (
	// ErrCompanyNotFound - 404: company does not exist.
	ErrCompanyNotFound int = iota + 103000
	// ErrCompanyAlreadyExist - 409: company code already used.
	ErrCompanyAlreadyExist
	// ErrCompanyNotEmpty - 409: company still owns users or devices.
	ErrCompanyNotEmpty
)

// Assignment error codes (104xxx).
const (
	// ErrInvalidAssignment - 400: cross-company pair or unknown access level.
	ErrInvalidAssignment int = iota + 104000
	// ErrAssignmentNotFound - 404: assignment does not exist.
	ErrAssignmentNotFound
)

// Zone/topic error codes (105xxx).
const (
	// ErrZoneNotFound - 404: zone does not exist.
	ErrZoneNotFound int = iota + 105000
	// ErrTopicNotFound - 404: topic does not exist.
	ErrTopicNotFound
	// ErrTopicAlreadyExist - 409: topic path already used inside the zone.
	ErrTopicAlreadyExist
)

// Database error codes (106xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 106000
	// ErrRecordNotFound - 404: record does not exist.
	ErrRecordNotFound
)
