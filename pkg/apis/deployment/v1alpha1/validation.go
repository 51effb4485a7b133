package v1alpha1

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidationIssue describes a single configuration problem with a fix suggestion.
type ValidationIssue struct {
	// Field is the configuration path (e.g. "spec.domain").
	Field string
	// Message describes what is wrong.
	Message string
	// FixSuggestion tells the user how to resolve the problem.
	FixSuggestion string
}

// ValidationResult collects the issues found while validating a Deployment.
type ValidationResult struct {
	Issues []ValidationIssue
}

// Valid returns true when no issues were found.
func (r *ValidationResult) Valid() bool {
	return len(r.Issues) == 0
}

// AddIssue appends an issue to the result.
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// Format renders all issues as a multiline string suitable for an error message.
func (r *ValidationResult) Format() string {
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		line := fmt.Sprintf("%s: %s", issue.Field, issue.Message)
		if issue.FixSuggestion != "" {
			line += fmt.Sprintf(" (%s)", issue.FixSuggestion)
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// Validate checks a Deployment against its struct tags and cross-field rules.
// The returned result lists every issue found; use Valid() to check the outcome.
func Validate(deployment *Deployment) *ValidationResult {
	result := &ValidationResult{}

	validateMetadata(deployment, result)
	validateTags(deployment, result)
	validateTLS(&deployment.Spec, result)
	validateSource(&deployment.Spec, result)

	return result
}

// validateMetadata checks the Kind and APIVersion fields.
func validateMetadata(deployment *Deployment, result *ValidationResult) {
	if deployment.Kind != "" && deployment.Kind != Kind {
		result.AddIssue(ValidationIssue{
			Field:         "kind",
			Message:       fmt.Sprintf("kind %q does not match expected value", deployment.Kind),
			FixSuggestion: "set kind to '" + Kind + "'",
		})
	}

	if deployment.APIVersion != "" && deployment.APIVersion != APIVersion {
		result.AddIssue(ValidationIssue{
			Field:         "apiVersion",
			Message:       fmt.Sprintf("apiVersion %q does not match expected value", deployment.APIVersion),
			FixSuggestion: "set apiVersion to '" + APIVersion + "'",
		})
	}
}

// validateTags runs the struct-tag validators (required, fqdn, email, port ranges).
func validateTags(deployment *Deployment, result *ValidationResult) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(deployment)
	if err == nil {
		return
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		result.AddIssue(ValidationIssue{
			Field:   "spec",
			Message: err.Error(),
		})

		return
	}

	for _, fieldError := range validationErrors {
		result.AddIssue(tagIssue(fieldError))
	}
}

// tagIssue converts a validator field error into a ValidationIssue.
func tagIssue(fieldError validator.FieldError) ValidationIssue {
	field := namespaceToPath(fieldError.Namespace())

	switch fieldError.Tag() {
	case "required":
		return ValidationIssue{
			Field:         field,
			Message:       "value is required",
			FixSuggestion: "set " + field + " in config.yaml or pass the matching flag",
		}
	case "fqdn":
		return ValidationIssue{
			Field:         field,
			Message:       fmt.Sprintf("%q is not a fully qualified domain name", fieldError.Value()),
			FixSuggestion: "use a hostname like happy.example.com",
		}
	case "email":
		return ValidationIssue{
			Field:         field,
			Message:       fmt.Sprintf("%q is not a valid email address", fieldError.Value()),
			FixSuggestion: "use a reachable contact address; CAs send expiry notices to it",
		}
	case "min", "max":
		return ValidationIssue{
			Field:         field,
			Message:       fmt.Sprintf("value %v is outside the allowed range", fieldError.Value()),
			FixSuggestion: "ports must be between 1 and 65535",
		}
	default:
		return ValidationIssue{
			Field:   field,
			Message: fmt.Sprintf("failed %q validation", fieldError.Tag()),
		}
	}
}

// namespaceToPath converts a validator namespace ("Deployment.Spec.Domain")
// into a configuration path ("spec.domain").
func namespaceToPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // drop the root struct name
	}

	for i, part := range parts {
		parts[i] = lowerFirst(part)
	}

	return strings.Join(parts, ".")
}

// lowerFirst lowercases the leading word of a Go field name, keeping camelCase
// boundaries intact for acronym prefixes ("HTTPPort" becomes "httpPort").
func lowerFirst(s string) string {
	runes := []rune(s)

	upperLen := 0
	for upperLen < len(runes) && unicode.IsUpper(runes[upperLen]) {
		upperLen++
	}

	switch {
	case upperLen == 0:
		return s
	case upperLen == len(runes):
		return strings.ToLower(s)
	case upperLen == 1:
		return strings.ToLower(string(runes[0])) + string(runes[1:])
	default:
		return strings.ToLower(string(runes[:upperLen-1])) + string(runes[upperLen-1:])
	}
}

// validateTLS checks mode-dependent TLS requirements.
func validateTLS(spec *Spec, result *ValidationResult) {
	if !spec.TLS.Mode.IsValid() {
		result.AddIssue(ValidationIssue{
			Field:         "spec.tls.mode",
			Message:       fmt.Sprintf("%s: %s", ErrInvalidTLSMode, spec.TLS.Mode),
			FixSuggestion: "valid modes: " + strings.Join(spec.TLS.Mode.ValidValues(), ", "),
		})

		return
	}

	if spec.TLS.Mode.RequiresEmail() && spec.Email == "" {
		result.AddIssue(ValidationIssue{
			Field:         "spec.email",
			Message:       ErrEmailRequired.Error(),
			FixSuggestion: fmt.Sprintf("set email, or switch tls.mode away from %s", spec.TLS.Mode),
		})
	}

	if spec.TLS.Mode == TLSModeCustom && (spec.TLS.CertFile == "" || spec.TLS.KeyFile == "") {
		result.AddIssue(ValidationIssue{
			Field:         "spec.tls",
			Message:       ErrCertFilesRequired.Error(),
			FixSuggestion: "set tls.certFile and tls.keyFile to existing PEM files",
		})
	}
}

// validateSource checks strategy-dependent source requirements.
func validateSource(spec *Spec, result *ValidationResult) {
	if !spec.Server.Source.Strategy.IsValid() {
		result.AddIssue(ValidationIssue{
			Field:         "spec.server.source.strategy",
			Message:       fmt.Sprintf("%s: %s", ErrInvalidSourceStrategy, spec.Server.Source.Strategy),
			FixSuggestion: "valid strategies: " + strings.Join(spec.Server.Source.Strategy.ValidValues(), ", "),
		})

		return
	}

	switch spec.Server.Source.Strategy {
	case SourceStrategyGit:
		if spec.Server.Source.Repository == "" {
			result.AddIssue(ValidationIssue{
				Field:         "spec.server.source.repository",
				Message:       ErrRepositoryRequired.Error(),
				FixSuggestion: "set the git URL of the Happy server repository",
			})
		}
	case SourceStrategyImage:
		if spec.Server.Source.Image == "" {
			result.AddIssue(ValidationIssue{
				Field:         "spec.server.source.image",
				Message:       ErrImageRequired.Error(),
				FixSuggestion: "set the image reference of a published Happy server build",
			})
		}
	}
}
