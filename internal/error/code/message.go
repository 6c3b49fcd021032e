package code

var codeMessageMap = map[int]string{
	ErrSuccess:         "success",
	ErrUnknown:         "internal server error",
	ErrBind:            "failed to bind request body",
	ErrValidation:      "request validation failed",
	ErrTokenInvalid:    "invalid authentication token",
	ErrUnauthorized:    "operation not allowed for this account",
	ErrTooManyRequests: "too many requests",

	ErrUserNotFound:          "user not found",
	ErrUserAlreadyExist:      "user already exists",
	ErrUserPasswordIncorrect: "incorrect email or password",
	ErrUserInactive:          "user account is inactive",

	ErrDeviceNotFound:     "device not found",
	ErrDeviceAlreadyExist: "device number already exists in this company",
	ErrDeviceInactive:     "device is inactive",

	ErrCompanyNotFound:     "company not found",
	ErrCompanyAlreadyExist: "company code already exists",
	ErrCompanyNotEmpty:     "company still owns users or devices",

	ErrInvalidAssignment:  "invalid device assignment",
	ErrAssignmentNotFound: "assignment not found",

	ErrZoneNotFound:      "zone not found",
	ErrTopicNotFound:     "topic not found",
	ErrTopicAlreadyExist: "topic path already exists in this zone",

	ErrDatabase:       "database error",
	ErrRecordNotFound: "record not found",
}

var codeStatusMap = map[int]int{
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrUnauthorized:    StatusForbidden,
	ErrTooManyRequests: StatusTooManyRequests,

	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusConflict,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrUserInactive:          StatusForbidden,

	ErrDeviceNotFound:     StatusNotFound,
	ErrDeviceAlreadyExist: StatusConflict,
	ErrDeviceInactive:     StatusBadRequest,

	ErrCompanyNotFound:     StatusNotFound,
	ErrCompanyAlreadyExist: StatusConflict,
	ErrCompanyNotEmpty:     StatusConflict,

	ErrInvalidAssignment:  StatusBadRequest,
	ErrAssignmentNotFound: StatusNotFound,

	ErrZoneNotFound:      StatusNotFound,
	ErrTopicNotFound:     StatusNotFound,
	ErrTopicAlreadyExist: StatusConflict,

	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage returns the human-readable message for an error code.
func GetMessage(errorCode int) string {
	if msg, ok := codeMessageMap[errorCode]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus returns the HTTP status for an error code.
func GetStatus(errorCode int) int {
	if status, ok := codeStatusMap[errorCode]; ok {
		return status
	}
	return StatusInternalServerError
}
