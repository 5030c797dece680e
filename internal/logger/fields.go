package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldComponent names the part of the application that emitted the entry.
	FieldComponent = "component"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldOfferingID identifies a course or job offering.
	FieldOfferingID = "offering_id"
	// FieldOfferingKind is "course" or "job".
	FieldOfferingKind = "offering_kind"
	// FieldCandidateID identifies the candidate whose snapshot is evaluated.
	FieldCandidateID = "candidate_id"
	// FieldCandidateRole is the role the snapshot was projected for.
	FieldCandidateRole = "candidate_role"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields returns fields describing the AI provider and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// OfferingFields returns fields identifying an offering.
func OfferingFields(id, kind string) []zap.Field {
	return StringFields(
		StringField{Key: FieldOfferingID, Value: id},
		StringField{Key: FieldOfferingKind, Value: kind},
	)
}

// CandidateFields returns fields identifying the evaluated candidate.
func CandidateFields(id, role string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCandidateID, Value: id},
		StringField{Key: FieldCandidateRole, Value: role},
	)
}
