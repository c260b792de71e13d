package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

const internalDetail = "unexpected error while processing the request"

// ErrorMapper turns an application error into a problem; ok is false when it does not apply.
type ErrorMapper func(err error) (problem ProblemDetail, ok bool)

// MapSentinel maps any error wrapping one of targets onto template, using the error text as detail.
func MapSentinel(template ProblemDetail, targets ...error) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		for _, target := range targets {
			if errors.Is(err, target) {
				return template.WithDetail(err.Error()), true
			}
		}
		return ProblemDetail{}, false
	}
}

// ChainedResponder writes problem+json responses, consulting mappers in order.
type ChainedResponder struct {
	baseURI string
	mappers []ErrorMapper
}

// NewChainedResponder prefixes relative problem types with baseURI when it is set.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{baseURI: strings.TrimRight(baseURI, "/"), mappers: mappers}
}

// Respond writes p, defaulting Instance to the request path.
func (r *ChainedResponder) Respond(c *gin.Context, p ProblemDetail) {
	if r.baseURI != "" && strings.HasPrefix(p.Type, "/") {
		p.Type = r.baseURI + p.Type
	}
	if p.Instance == "" {
		p.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(p.Status, p)
}

// RespondError picks the first matching mapper, then a ProblemDetail in the chain.
// Anything else becomes a 500 without the internal message, which is attached to the gin context.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if p, ok := mapper(err); ok {
			r.Respond(c, p)
			return
		}
	}
	var p ProblemDetail
	if errors.As(err, &p) {
		r.Respond(c, p)
		return
	}
	_ = c.Error(err)
	r.Respond(c, ErrInternal.WithDetail(internalDetail))
}

// BadRequest answers undecodable payloads.
func (r *ChainedResponder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// ValidationFailed answers with per-field errors.
func (r *ChainedResponder) ValidationFailed(c *gin.Context, fieldErrors map[string]string) {
	r.Respond(c, NewValidationProblem(fieldErrors))
}
