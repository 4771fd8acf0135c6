// Package taxonomy defines the fixed catalog of free-zone information fields
// tracked across the knowledge base and live website sources.
package taxonomy

import "strings"

// Field identifies one category of business-setup information.
type Field string

// The full field catalog. Order is significant: reports and recommendations
// iterate fields in this order.
const (
	FieldSetupProcess       Field = "setup_process"
	FieldLegalRequirements  Field = "legal_requirements"
	FieldFeeStructure       Field = "fee_structure"
	FieldCosts              Field = "costs"
	FieldVisaInformation    Field = "visa_information"
	FieldLicenseTypes       Field = "license_types"
	FieldRequiredDocuments  Field = "required_documents"
	FieldBusinessActivities Field = "business_activities"
	FieldFacilities         Field = "facilities"
	FieldBenefits           Field = "benefits"
	FieldTimelines          Field = "timelines"
)

var ordered = []Field{
	FieldSetupProcess,
	FieldLegalRequirements,
	FieldFeeStructure,
	FieldCosts,
	FieldVisaInformation,
	FieldLicenseTypes,
	FieldRequiredDocuments,
	FieldBusinessActivities,
	FieldFacilities,
	FieldBenefits,
	FieldTimelines,
}

// weights rank fields for recommendation prioritization. Static configuration,
// never mutated at runtime.
var weights = map[Field]int{
	FieldSetupProcess:       9,
	FieldLegalRequirements:  9,
	FieldFeeStructure:       10,
	FieldCosts:              8,
	FieldVisaInformation:    8,
	FieldLicenseTypes:       9,
	FieldRequiredDocuments:  8,
	FieldBusinessActivities: 7,
	FieldFacilities:         5,
	FieldBenefits:           4,
	FieldTimelines:          6,
}

// keywords are the page-scan terms per field, matched case-insensitively
// against headings and emphasized text.
var keywords = map[Field][]string{
	FieldSetupProcess:       {"setup", "company formation", "how to start", "registration", "incorporation"},
	FieldLegalRequirements:  {"legal", "regulation", "compliance", "law", "requirement"},
	FieldFeeStructure:       {"fee", "fees", "pricing", "price list", "tariff"},
	FieldCosts:              {"cost", "costs", "package", "aed", "payment"},
	FieldVisaInformation:    {"visa", "residence", "immigration", "permit"},
	FieldLicenseTypes:       {"license", "licence", "licensing", "trade license"},
	FieldRequiredDocuments:  {"document", "documents", "paperwork", "passport copy"},
	FieldBusinessActivities: {"activity", "activities", "business type", "sector"},
	FieldFacilities:         {"facility", "facilities", "office", "warehouse", "flexi desk"},
	FieldBenefits:           {"benefit", "advantages", "why choose", "100% ownership", "tax free"},
	FieldTimelines:          {"timeline", "how long", "processing time", "duration", "working days"},
}

// synonyms maps raw knowledge-record category labels to the taxonomy fields
// they satisfy. A single label may evidence more than one field ("fees" covers
// both the fee structure and overall costs). Built once, queried in O(1).
var synonyms = map[string][]Field{
	"setup":               {FieldSetupProcess},
	"setup_process":       {FieldSetupProcess},
	"formation":           {FieldSetupProcess},
	"registration":        {FieldSetupProcess},
	"legal":               {FieldLegalRequirements},
	"legal_requirements":  {FieldLegalRequirements},
	"compliance":          {FieldLegalRequirements},
	"fees":                {FieldFeeStructure, FieldCosts},
	"fee_structure":       {FieldFeeStructure},
	"pricing":             {FieldFeeStructure, FieldCosts},
	"costs":               {FieldCosts},
	"packages":            {FieldCosts},
	"visa":                {FieldVisaInformation},
	"visas":               {FieldVisaInformation},
	"visa_information":    {FieldVisaInformation},
	"immigration":         {FieldVisaInformation},
	"license":             {FieldLicenseTypes},
	"licenses":            {FieldLicenseTypes},
	"license_types":       {FieldLicenseTypes},
	"licensing":           {FieldLicenseTypes},
	"documents":           {FieldRequiredDocuments},
	"required_documents":  {FieldRequiredDocuments},
	"activities":          {FieldBusinessActivities},
	"business_activities": {FieldBusinessActivities},
	"facilities":          {FieldFacilities},
	"offices":             {FieldFacilities},
	"benefits":            {FieldBenefits},
	"advantages":          {FieldBenefits},
	"timelines":           {FieldTimelines},
	"timeline":            {FieldTimelines},
	"processing":          {FieldTimelines},
}

// subpagePaths are the guessed site sections visited by the live extractor,
// capped at six per audit run.
var subpagePaths = []string{
	"setup",
	"costs",
	"fees",
	"licenses",
	"visas",
	"faq",
}

// Fields returns the full catalog in canonical order.
func Fields() []Field {
	out := make([]Field, len(ordered))
	copy(out, ordered)
	return out
}

// Size returns the number of fields in the catalog.
func Size() int {
	return len(ordered)
}

// Valid reports whether f is a member of the catalog.
func Valid(f Field) bool {
	_, ok := weights[f]
	return ok
}

// Weight returns the importance weight (1-10) for a field, or 0 for an
// unknown field.
func Weight(f Field) int {
	return weights[f]
}

// Keywords returns the page-scan terms for a field.
func Keywords(f Field) []string {
	return keywords[f]
}

// FieldsForCategory resolves a raw record category label to the taxonomy
// fields it evidences. Labels are normalized (trimmed, lowercased, spaces and
// dashes folded to underscores) before lookup. Unknown labels map to nothing.
func FieldsForCategory(label string) []Field {
	return synonyms[NormalizeCategory(label)]
}

// NormalizeCategory canonicalizes a raw category label for synonym lookup.
func NormalizeCategory(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.ReplaceAll(label, "-", "_")
	label = strings.ReplaceAll(label, " ", "_")
	return label
}

// SubpagePaths returns the guessed subpage path list.
func SubpagePaths() []string {
	out := make([]string, len(subpagePaths))
	copy(out, subpagePaths)
	return out
}
