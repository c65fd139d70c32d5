// Package validation checks persisted node records, link requests, and whole
// tree files before they reach the graph model.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/taraforge/attacktree/pkg/graph"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxNodeIDLength = 128
	MaxChildren     = 256

	idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.:-]*$`)
)

func init() {
	validate = validator.New()
}

// LinkRequest is a proposed source -> target edge from the authoring layer.
type LinkRequest struct {
	SourceID string `json:"source_id" validate:"required,max=128"`
	TargetID string `json:"target_id" validate:"required,max=128"`
}

// ValidateLinkRequest validates a link mutation request.
func ValidateLinkRequest(req *LinkRequest) error {
	if req == nil {
		return errors.New("link request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if !idPattern.MatchString(req.SourceID) {
		return fmt.Errorf("SourceID: %q contains invalid characters", req.SourceID)
	}
	if !idPattern.MatchString(req.TargetID) {
		return fmt.Errorf("TargetID: %q contains invalid characters", req.TargetID)
	}
	return nil
}

// ValidateRecord validates a single persisted node record.
func ValidateRecord(rec *graph.Record) error {
	if rec == nil {
		return errors.New("node record cannot be nil")
	}
	if err := validate.Struct(rec); err != nil {
		return formatValidationError(err)
	}
	if !idPattern.MatchString(rec.ID) {
		return fmt.Errorf("ID: %q contains invalid characters", rec.ID)
	}
	if len(rec.Children) > MaxChildren {
		return fmt.Errorf("Children: maximum %d children allowed, got %d", MaxChildren, len(rec.Children))
	}
	if rec.Potential != nil {
		if err := validate.Struct(rec.Potential); err != nil {
			return formatValidationError(err)
		}
	}
	return nil
}

// ValidateRecords validates a record list as a whole: per-record shape,
// unique IDs across the project-wide namespace, and no dangling child
// references.
func ValidateRecords(records []graph.Record) error {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if err := ValidateRecord(&records[i]); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if _, dup := seen[records[i].ID]; dup {
			return fmt.Errorf("node %d: duplicate id %q", i, records[i].ID)
		}
		seen[records[i].ID] = struct{}{}
	}
	for i := range records {
		for _, cid := range records[i].Children {
			if _, ok := seen[cid]; !ok {
				return fmt.Errorf("node %q: child %q does not exist", records[i].ID, cid)
			}
		}
	}
	return nil
}

// formatValidationError converts validator errors to a friendlier format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
