package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLabel is returned by the Parse functions for values outside the closed label sets.
var ErrUnknownLabel = errors.New("unknown label")

// Category is the kind of project being quoted.
type Category string

const (
	CategoryWeb          Category = "web"
	CategoryMobile       Category = "mobile"
	CategoryAI           Category = "ai"
	CategoryConsultation Category = "consultation"
	CategoryMaintenance  Category = "maintenance"
)

// Complexity is the effort tier of a single feature.
type Complexity string

const (
	ComplexitySimple      Complexity = "simple"
	ComplexityMedium      Complexity = "medium"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very-complex"
)

// DesignTier is the requested level of visual design work.
type DesignTier string

const (
	DesignBasic    DesignTier = "basic"
	DesignStandard DesignTier = "standard"
	DesignPremium  DesignTier = "premium"
	DesignCustom   DesignTier = "custom"
)

// HostingTier selects a recurring hosting plan.
type HostingTier string

const (
	HostingNone       HostingTier = "none"
	HostingBasic      HostingTier = "basic"
	HostingStandard   HostingTier = "standard"
	HostingPremium    HostingTier = "premium"
	HostingEnterprise HostingTier = "enterprise"
)

// MaintenanceTier selects a recurring maintenance plan.
type MaintenanceTier string

const (
	MaintenanceNone     MaintenanceTier = "none"
	MaintenanceBasic    MaintenanceTier = "basic"
	MaintenanceStandard MaintenanceTier = "standard"
	MaintenancePremium  MaintenanceTier = "premium"
)

// Urgency expresses how fast the client needs delivery.
type Urgency string

const (
	UrgencyFlexible Urgency = "flexible"
	UrgencyStandard Urgency = "standard"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyASAP     Urgency = "asap"
)

var (
	Categories       = []Category{CategoryWeb, CategoryMobile, CategoryAI, CategoryConsultation, CategoryMaintenance}
	Complexities     = []Complexity{ComplexitySimple, ComplexityMedium, ComplexityComplex, ComplexityVeryComplex}
	DesignTiers      = []DesignTier{DesignBasic, DesignStandard, DesignPremium, DesignCustom}
	HostingTiers     = []HostingTier{HostingNone, HostingBasic, HostingStandard, HostingPremium, HostingEnterprise}
	MaintenanceTiers = []MaintenanceTier{MaintenanceNone, MaintenanceBasic, MaintenanceStandard, MaintenancePremium}
	Urgencies        = []Urgency{UrgencyFlexible, UrgencyStandard, UrgencyUrgent, UrgencyASAP}
)

func parseLabel[T ~string](kind, raw string, allowed []T) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", kind, raw, ErrUnknownLabel)
}

func ParseCategory(raw string) (Category, error) {
	return parseLabel("category", raw, Categories)
}

func ParseComplexity(raw string) (Complexity, error) {
	return parseLabel("complexity", raw, Complexities)
}

func ParseDesignTier(raw string) (DesignTier, error) {
	return parseLabel("design tier", raw, DesignTiers)
}

func ParseHostingTier(raw string) (HostingTier, error) {
	return parseLabel("hosting tier", raw, HostingTiers)
}

func ParseMaintenanceTier(raw string) (MaintenanceTier, error) {
	return parseLabel("maintenance tier", raw, MaintenanceTiers)
}

func ParseUrgency(raw string) (Urgency, error) {
	return parseLabel("urgency", raw, Urgencies)
}

// LabelStrings converts a label list into plain strings, e.g. for schema enums.
func LabelStrings[T ~string](labels []T) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}
