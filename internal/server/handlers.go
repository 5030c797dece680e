package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/edumatch/internal/eligibility"
	"github.com/spigell/edumatch/internal/filtering"
	"github.com/spigell/edumatch/internal/portal"
)

// EvaluateRequest carries a stored requirement object and a candidate snapshot.
type EvaluateRequest struct {
	Requirements map[string]any       `json:"requirements"`
	Snapshot     eligibility.Snapshot `json:"snapshot"`
}

// FilterRequest carries raw offering documents as stored. A missing snapshot
// leaves every offering with unknown eligibility.
type FilterRequest struct {
	Kind      string                `json:"kind" validate:"omitempty,oneof=course courses job jobs"`
	Offerings []map[string]any      `json:"offerings" validate:"required"`
	Snapshot  *eligibility.Snapshot `json:"snapshot"`
	Query     filtering.Query       `json:"query"`
}

type FilterResponse struct {
	Offerings []*portal.Offering `json:"offerings"`
	Count     int                `json:"count"`
}

func (s *Server) evaluate(c *gin.Context) {
	var req EvaluateRequest
	if !s.bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, eligibility.Evaluate(portal.DecodeRequirements(req.Requirements), &req.Snapshot))
}

func (s *Server) filterOfferings(c *gin.Context) {
	var req FilterRequest
	if !s.bind(c, &req) {
		return
	}

	kind := portal.KindCourse
	if req.Kind != "" {
		parsed, err := portal.ParseKind(req.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		kind = parsed
	}

	items := make([]portal.Item, 0, len(req.Offerings))
	for _, doc := range req.Offerings {
		items = append(items, doc)
	}

	offerings, err := portal.DecodeOfferings(items, kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	steps := filtering.Pipeline(req.Query, req.Snapshot, s.workers, s.logger)
	out, err := filtering.Run(c.Request.Context(), s.logger, steps, offerings)
	if err != nil {
		s.logger.Warn("filter request failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, FilterResponse{Offerings: out.Items, Count: out.Len()})
}

// bind decodes and validates the JSON body, answering 400 on failure.
func (s *Server) bind(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}

	if err := s.validate.Struct(target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationFields(err)})
		return false
	}

	return true
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["request"] = err.Error()
		return fields
	}

	for _, fe := range verrs {
		name := strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
		fields[name] = fe.Tag()
	}
	return fields
}
