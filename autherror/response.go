package autherror

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
)

const genericInternalMessage = "Internal server error"

// Body is the wire shape of every error written by the guard.
type Body struct {
	Success bool       `json:"success"`
	Error   DetailBody `json:"error"`
}

// DetailBody is the "error" member of Body.
type DetailBody struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	RequestID  string `json:"request_id"`
	RetryAfter int    `json:"retry_after,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Writer writes taxonomy errors as JSON responses.
type Writer struct {
	production bool
	now        func() time.Time
}

// NewWriter returns a Writer. In production, errors outside the taxonomy are
// reported without any internal detail.
func NewWriter(production bool) *Writer {
	return &Writer{
		production: production,
		now:        time.Now,
	}
}

// NewRequestID returns a fresh random identifier used to correlate a client
// report with server logs.
func NewRequestID() string {
	id, err := ccc.NewUUID()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}

	return id.String()
}

// Body builds the response body and status for err without writing it.
func (wr *Writer) Body(err error, requestID string) (int, Body) {
	detail := DetailBody{
		Timestamp: wr.now().UTC().Format(time.RFC3339Nano),
		RequestID: requestID,
	}

	status := http.StatusInternalServerError
	if e, ok := As(err); ok {
		status = e.Status()
		detail.Code = e.code
		detail.Message = e.message
		if e.retryAfter > 0 {
			detail.RetryAfter = int(math.Ceil(e.retryAfter.Seconds()))
		}
	} else {
		detail.Code = CodeInternal
		detail.Message = genericInternalMessage
		if !wr.production && err != nil {
			detail.Details = err.Error()
		}
	}

	return status, Body{Error: detail}
}

// Write writes err to w and returns the status code and request ID it used.
// Encoding failures are logged to the request logger of r.
func (wr *Writer) Write(w http.ResponseWriter, r *http.Request, err error) (status int, requestID string) {
	requestID = NewRequestID()
	status, body := wr.Body(err, requestID)

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	if body.Error.RetryAfter > 0 {
		h.Set("Retry-After", strconv.Itoa(body.Error.RetryAfter))
	}
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Req(r).Error(errors.Wrap(err, "json.Encoder.Encode()"))
	}

	return status, requestID
}
