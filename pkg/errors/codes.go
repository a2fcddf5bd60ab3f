package errors

import "net/http"

// ErrorCode identifies an error condition as "<MODULE>_<NNN>".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Short names used by the generic factories.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Feed codes. FEED_001 and FEED_002 are transport failures and end the load
// for the store that issued it. FEED_003 only appears in load statistics.
const (
	ErrCodeFeedFetchFailed ErrorCode = "FEED_001"
	ErrCodeFeedBadStatus   ErrorCode = "FEED_002"
	ErrCodeFeedParseError  ErrorCode = "FEED_003"
	ErrCodeFeedNotReady    ErrorCode = "FEED_004"
	ErrCodeCompanyNotFound ErrorCode = "FEED_005"
)

const (
	ErrCodeGeometryLoadFailed ErrorCode = "GEO_001"
	ErrCodeGeometryNotFound   ErrorCode = "GEO_002"
	ErrCodeGeometryInvalid    ErrorCode = "GEO_003"
)

const (
	ErrCodeSessionNotFound      ErrorCode = "SESSION_001"
	ErrCodeSessionLimitExceeded ErrorCode = "SESSION_002"
	ErrCodeSessionClosed        ErrorCode = "SESSION_003"
	ErrCodeEventInvalid         ErrorCode = "SESSION_004"
)

const (
	ErrCodeRenderFailed    ErrorCode = "RENDER_001"
	ErrCodeViewUnsupported ErrorCode = "RENDER_002"
)

const (
	ErrCodeEventPublishFailed ErrorCode = "EVENT_001"
	ErrCodeEventDecodeFailed  ErrorCode = "EVENT_002"
)

type codeInfo struct {
	status  int
	message string
}

// registry holds the HTTP status and public message of every known code.
var registry = map[ErrorCode]codeInfo{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeConflict:           {http.StatusConflict, "resource conflict"},
	ErrCodeTooManyRequests:    {http.StatusTooManyRequests, "too many requests"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeValidation:         {http.StatusUnprocessableEntity, "validation failed"},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization failed"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},
	ErrCodeExternalService:    {http.StatusBadGateway, "external service error"},

	ErrCodeFeedFetchFailed: {http.StatusBadGateway, "failed to fetch portfolio data"},
	ErrCodeFeedBadStatus:   {http.StatusBadGateway, "portfolio feed returned an error status"},
	ErrCodeFeedParseError:  {http.StatusBadGateway, "malformed portfolio row"},
	ErrCodeFeedNotReady:    {http.StatusServiceUnavailable, "portfolio data is still loading"},
	ErrCodeCompanyNotFound: {http.StatusNotFound, "company not found"},

	ErrCodeGeometryLoadFailed: {http.StatusBadGateway, "failed to load world geometry"},
	ErrCodeGeometryNotFound:   {http.StatusNotFound, "world geometry not found"},
	ErrCodeGeometryInvalid:    {http.StatusUnprocessableEntity, "invalid world geometry"},

	ErrCodeSessionNotFound:      {http.StatusNotFound, "session not found"},
	ErrCodeSessionLimitExceeded: {http.StatusTooManyRequests, "too many active sessions"},
	ErrCodeSessionClosed:        {http.StatusGone, "session closed"},
	ErrCodeEventInvalid:         {http.StatusBadRequest, "invalid pointer event"},

	ErrCodeRenderFailed:    {http.StatusInternalServerError, "failed to render scene"},
	ErrCodeViewUnsupported: {http.StatusBadRequest, "unsupported view"},

	ErrCodeEventPublishFailed: {http.StatusInternalServerError, "failed to publish engagement event"},
	ErrCodeEventDecodeFailed:  {http.StatusBadRequest, "failed to decode engagement event"},
}

// HTTPStatusForCode returns 500 for unknown codes.
func HTTPStatusForCode(code ErrorCode) int {
	if info, ok := registry[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func DefaultMessageForCode(code ErrorCode) string {
	if info, ok := registry[code]; ok {
		return info.message
	}
	return "unknown error"
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsFetchError reports whether err is a terminal feed transport failure.
func IsFetchError(err error) bool {
	return IsCode(err, ErrCodeFeedFetchFailed) || IsCode(err, ErrCodeFeedBadStatus)
}

//Personal.AI order the ending
