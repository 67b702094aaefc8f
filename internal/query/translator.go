// Package query translates request query parameters into a typed listing
// description (filter conditions, sort order, projection, page window)
// that the feedback repository turns into a database query. Parameters
// are parsed structurally; nothing from the request is ever spliced into
// a query as raw text.
package query

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/feedback-board/pkg/util"
)

// Defaults for the page window.
const (
	DefaultPage  = 1
	DefaultLimit = 25
)

// Op is a comparison operator recognized in bracketed parameter keys,
// e.g. upvotes[gte]=10.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// Condition is a single typed filter on a feedback field. All conditions
// are combined with AND.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Listing is the translated form of a feedback list request.
type Listing struct {
	Conditions []Condition
	Search     string
	Select     []string
	Sort       []SortField
	Page       int
	Limit      int
}

// control parameters are consumed by the translator itself and never
// become filters.
var controlParams = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
	"search": {},
}

// fields holding ObjectID references.
var objectIDFields = map[string]struct{}{
	"category": {},
	"user":     {},
}

// Translate builds a Listing from raw query parameters. Unknown
// parameters become equality filters on the same-named field; empty
// values and the literal "all" are dropped so UI defaults never turn
// into broken matches.
func Translate(params map[string]string) (*Listing, error) {
	listing := &Listing{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	for key, value := range params {
		if _, control := controlParams[key]; control {
			continue
		}
		if value == "" || value == "all" {
			continue
		}

		field, op := splitOperator(key)
		if err := checkFieldName(field); err != nil {
			return nil, err
		}

		if field == "createdAt" && op == OpEq {
			conds, err := parseDateRange(value)
			if err != nil {
				return nil, err
			}
			listing.Conditions = append(listing.Conditions, conds...)
			continue
		}

		cond, err := buildCondition(field, op, value)
		if err != nil {
			return nil, err
		}
		listing.Conditions = append(listing.Conditions, cond)
	}

	listing.Search = strings.TrimSpace(params["search"])

	if sel := params["select"]; sel != "" {
		for _, field := range strings.Split(sel, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			if err := checkFieldName(field); err != nil {
				return nil, err
			}
			listing.Select = append(listing.Select, field)
		}
	}

	sort, err := parseSort(params["sort"])
	if err != nil {
		return nil, err
	}
	listing.Sort = sort

	listing.Page = parsePositiveInt(params["page"], DefaultPage)
	listing.Limit = parsePositiveInt(params["limit"], DefaultLimit)

	return listing, nil
}

// Offset returns the number of documents to skip.
func (l *Listing) Offset() int {
	return (l.Page - 1) * l.Limit
}

// splitOperator recognizes the field[op] key form. Anything else is an
// equality on the whole key.
func splitOperator(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	field := key[:open]
	switch Op(key[open+1 : len(key)-1]) {
	case OpGt:
		return field, OpGt
	case OpGte:
		return field, OpGte
	case OpLt:
		return field, OpLt
	case OpLte:
		return field, OpLte
	case OpIn:
		return field, OpIn
	default:
		return key, OpEq
	}
}

func checkFieldName(field string) error {
	if field == "" || strings.ContainsAny(field, "$.") {
		return util.NewValidationError("invalid filter field " + strconv.Quote(field))
	}
	return nil
}

func buildCondition(field string, op Op, value string) (Condition, error) {
	if op == OpIn {
		parts := strings.Split(value, ",")
		values := make([]any, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			typed, err := typeValue(field, part)
			if err != nil {
				return Condition{}, err
			}
			values = append(values, typed)
		}
		return Condition{Field: field, Op: OpIn, Value: values}, nil
	}

	typed, err := typeValue(field, value)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Field: field, Op: op, Value: typed}, nil
}

// typeValue coerces the raw string into the type the stored field holds.
func typeValue(field, value string) (any, error) {
	if _, isRef := objectIDFields[field]; isRef {
		id, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, util.NewValidationError("invalid id for field " + field)
		}
		return id, nil
	}
	switch field {
	case "upvotes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, util.NewValidationError("upvotes filter must be a number")
		}
		return n, nil
	case "createdAt":
		t, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return value, nil
	}
}

// parseDateRange handles the JSON-encoded createdAt parameter, e.g.
// createdAt={"gte":"2024-01-01","lte":"2024-02-01"}. Both bounds are
// inclusive and optional.
func parseDateRange(raw string) ([]Condition, error) {
	var bounds struct {
		Gte string `json:"gte"`
		Lte string `json:"lte"`
	}
	if err := json.Unmarshal([]byte(raw), &bounds); err != nil {
		return nil, util.NewValidationError("malformed createdAt range")
	}

	var conds []Condition
	if bounds.Gte != "" {
		t, err := parseDate(bounds.Gte)
		if err != nil {
			return nil, err
		}
		conds = append(conds, Condition{Field: "createdAt", Op: OpGte, Value: t})
	}
	if bounds.Lte != "" {
		t, err := parseDate(bounds.Lte)
		if err != nil {
			return nil, err
		}
		conds = append(conds, Condition{Field: "createdAt", Op: OpLte, Value: t})
	}
	return conds, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, util.NewValidationError("invalid date " + strconv.Quote(value))
}

func parseSort(raw string) ([]SortField, error) {
	if strings.TrimSpace(raw) == "" {
		// Newest first by default.
		return []SortField{{Field: "createdAt", Desc: true}}, nil
	}
	var sort []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if err := checkFieldName(field); err != nil {
			return nil, err
		}
		sort = append(sort, SortField{Field: field, Desc: desc})
	}
	if len(sort) == 0 {
		sort = []SortField{{Field: "createdAt", Desc: true}}
	}
	return sort, nil
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
