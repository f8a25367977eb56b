package bench

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"labworks/pkg/domain"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message})
}

// failWith writes err with the status StatusFor picks. Blocking rule
// violations carry the rules result as data.
func failWith(c *gin.Context, err error) {
	status := StatusFor(err)
	resp := Response{Code: status, Message: err.Error()}
	var rv domain.RuleViolationError
	if errors.As(err, &rv) {
		resp.Data = violations(rv.Result)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// StatusFor maps bench errors to HTTP status codes.
func StatusFor(err error) int {
	var rv domain.RuleViolationError
	switch {
	case err == nil:
		return http.StatusOK
	case domain.IsTypeConstraint(err), errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case domain.IsRangeConstraint(err):
		return http.StatusUnprocessableEntity
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &rv):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type violationView struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message,omitempty"`
	Entity   string `json:"entity,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

func violations(res domain.Result) []violationView {
	out := make([]violationView, 0, len(res.Violations))
	for _, v := range res.Violations {
		out = append(out, violationView{
			Rule:     v.Rule,
			Severity: string(v.Severity),
			Message:  v.Message,
			Entity:   string(v.Entity),
			EntityID: v.EntityID,
		})
	}
	return out
}

// mutation is the data of every write endpoint: the committed record plus
// any non-blocking rule findings.
type mutation struct {
	Record     any             `json:"record"`
	Violations []violationView `json:"violations,omitempty"`
}

func withResult(record any, res domain.Result) mutation {
	m := mutation{Record: record}
	if len(res.Violations) > 0 {
		m.Violations = violations(res)
	}
	return m
}
