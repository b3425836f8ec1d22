package validation

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ahmedhassan142/Portfoliopersonla-website-sub000/internal/pricing"
)

//go:embed schema/quote.schema.json
var schemaFS embed.FS

// ErrMalformed is returned when a payload is not a JSON object.
var ErrMalformed = errors.New("malformed JSON payload")

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Errors is returned when a payload fails schema validation.
type Errors []ValidationError

func (e Errors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// Has reports whether any error concerns field or one of its children.
func (e Errors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

// Submission is a validated quote request from the public form.
type Submission struct {
	ClientName  string
	ClientEmail string
	Company     string
	Message     string
	Request     pricing.Request
}

type featurePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Complexity  string `json:"complexity"`
}

type estimatePayload struct {
	ProjectCategory  string           `json:"projectCategory"`
	Features         []featurePayload `json:"features"`
	DesignTier       string           `json:"designTier"`
	ContentPageCount int              `json:"contentPageCount"`
	BlogPostCount    int              `json:"blogPostCount"`
	ProductCount     int              `json:"productCount"`
	Integrations     []string         `json:"integrations"`
	HostingTier      string           `json:"hostingTier"`
	MaintenanceTier  string           `json:"maintenanceTier"`
	Urgency          string           `json:"urgency"`
	TimelineMonths   int              `json:"timelineMonths"`
}

type submissionPayload struct {
	estimatePayload
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	Company     string `json:"company"`
	Message     string `json:"message"`
}

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func schema(name string) (*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas("estimate", "submission")
	})
	if schemasErr != nil {
		return nil, schemasErr
	}
	return schemas[name], nil
}

// compileSchemas builds one root schema per named definition of the embedded document.
func compileSchemas(names ...string) (map[string]*gojsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schema/quote.schema.json")
	if err != nil {
		return nil, fmt.Errorf("read quote schema: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse quote schema: %w", err)
	}

	compiled := make(map[string]*gojsonschema.Schema, len(names))
	for _, name := range names {
		root := map[string]any{
			"$schema":     doc["$schema"],
			"definitions": doc["definitions"],
			"allOf":       []any{map[string]any{"$ref": "#/definitions/" + name}},
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(root))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		compiled[name] = s
	}
	return compiled, nil
}

// DecodeEstimate validates an estimate payload and converts it into a pricing request.
func DecodeEstimate(body []byte) (pricing.Request, error) {
	if err := validate("estimate", body); err != nil {
		return pricing.Request{}, err
	}

	var payload estimatePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return pricing.Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return payload.toRequest()
}

// DecodeSubmission validates a form submission: an estimate payload plus contact details.
func DecodeSubmission(body []byte) (Submission, error) {
	if err := validate("submission", body); err != nil {
		return Submission{}, err
	}

	var payload submissionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Submission{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	req, err := payload.toRequest()
	if err != nil {
		return Submission{}, err
	}

	return Submission{
		ClientName:  strings.TrimSpace(payload.ClientName),
		ClientEmail: strings.TrimSpace(payload.ClientEmail),
		Company:     strings.TrimSpace(payload.Company),
		Message:     strings.TrimSpace(payload.Message),
		Request:     req,
	}, nil
}

func validate(name string, body []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	s, err := schema(name)
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make(Errors, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		// allOf failures are reported alongside the errors that caused them.
		if desc.Type() == "number_all_of" {
			continue
		}
		errs = append(errs, ValidationError{
			Field:   fieldName(desc),
			Message: desc.Description(),
			Code:    errorCode(desc.Type()),
		})
	}
	return errs
}

func fieldName(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() != "required" {
		return field
	}
	property, ok := desc.Details()["property"].(string)
	if !ok || strings.HasSuffix(field, property) {
		return field
	}
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		return property
	}
	return field + "." + property
}

func errorCode(errType string) string {
	switch errType {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "string_lte":
		return "MAX_LENGTH_VIOLATION"
	case "number_gte":
		return "MINIMUM_VIOLATION"
	case "number_lte":
		return "MAXIMUM_VIOLATION"
	case "array_min_items":
		return "MIN_ITEMS_VIOLATION"
	case "array_max_items":
		return "MAX_ITEMS_VIOLATION"
	case "format":
		return "INVALID_FORMAT"
	case "pattern":
		return "PATTERN_MISMATCH"
	default:
		return strings.ToUpper(errType)
	}
}

func (p estimatePayload) toRequest() (pricing.Request, error) {
	var (
		req pricing.Request
		err error
	)
	if req.Category, err = pricing.ParseCategory(p.ProjectCategory); err != nil {
		return pricing.Request{}, err
	}
	if req.Design, err = pricing.ParseDesignTier(p.DesignTier); err != nil {
		return pricing.Request{}, err
	}
	if req.Hosting, err = pricing.ParseHostingTier(p.HostingTier); err != nil {
		return pricing.Request{}, err
	}
	if req.Maintenance, err = pricing.ParseMaintenanceTier(p.MaintenanceTier); err != nil {
		return pricing.Request{}, err
	}
	if req.Urgency, err = pricing.ParseUrgency(p.Urgency); err != nil {
		return pricing.Request{}, err
	}

	req.Features = make([]pricing.Feature, 0, len(p.Features))
	for _, f := range p.Features {
		complexity, err := pricing.ParseComplexity(f.Complexity)
		if err != nil {
			return pricing.Request{}, err
		}
		req.Features = append(req.Features, pricing.Feature{
			Name:        strings.TrimSpace(f.Name),
			Description: strings.TrimSpace(f.Description),
			Complexity:  complexity,
		})
	}

	req.ContentPages = p.ContentPageCount
	req.BlogPosts = p.BlogPostCount
	req.Products = p.ProductCount
	req.TimelineMonths = p.TimelineMonths
	req.Integrations = normalizeIntegrations(p.Integrations)
	return req, nil
}

// normalizeIntegrations lowercases and trims ids, dropping blanks and repeats.
// The first occurrence keeps its position.
func normalizeIntegrations(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
