package web

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrQueryParam will throw if a query parameter can't be turned into a
// find query
var ErrQueryParam = errors.New("query parameter is not valid")

const (
	defaultLimit = 100
	defaultSort  = "-createdAt"
)

// comparison keywords accepted in query parameters, e.g. duration[gte]=5
var operators = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

// reserved parameter names that never become filter criteria
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Features holds a find query assembled from request query parameters:
// filter criteria, sort order, field projection and pagination window.
type Features struct {
	Filter     bson.D
	Sort       bson.D
	Projection bson.D
	Skip       int64
	Limit      int64
}

// NewFeatures builds Features from url query values. Comparison keywords
// (gte, gt, lte, lt) are rewritten into mongo operator syntax, the sort
// defaults to newest-first and the page size to 100.
func NewFeatures(values url.Values) (*Features, error) {
	f := &Features{
		Filter: bson.D{},
		Limit:  defaultLimit,
	}

	for key := range values {
		if reserved[key] {
			continue
		}
		field, op, err := splitFilterKey(key)
		if err != nil {
			return nil, err
		}

		value := parseFilterValue(values.Get(key))
		if op == "" {
			f.Filter = append(f.Filter, primitive.E{Key: field, Value: value})
			continue
		}
		f.Filter = append(f.Filter, primitive.E{
			Key:   field,
			Value: bson.D{primitive.E{Key: op, Value: value}},
		})
	}

	f.Sort = parseSort(values.Get("sort"))

	if fields := values.Get("fields"); fields != "" {
		for _, name := range strings.Split(fields, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			f.Projection = append(f.Projection, primitive.E{Key: name, Value: 1})
		}
	}

	page := int64(1)
	if p := values.Get("page"); p != "" {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("page must be a positive number, got %q: %w", p, ErrQueryParam)
		}
		page = n
	}
	if l := values.Get("limit"); l != "" {
		n, err := strconv.ParseInt(l, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("limit must be a positive number, got %q: %w", l, ErrQueryParam)
		}
		f.Limit = n
	}
	f.Skip = (page - 1) * f.Limit

	return f, nil
}

// splitFilterKey splits "duration[gte]" into field and mongo operator.
// A bare key means equality.
func splitFilterKey(key string) (field, op string, err error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, "", nil
	}
	if !strings.HasSuffix(key, "]") {
		return "", "", fmt.Errorf("malformed filter parameter %q: %w", key, ErrQueryParam)
	}

	field = key[:open]
	keyword := key[open+1 : len(key)-1]
	mongoOp, ok := operators[keyword]
	if !ok {
		return "", "", fmt.Errorf("unknown filter operator %q: %w", keyword, ErrQueryParam)
	}
	return field, mongoOp, nil
}

// parseFilterValue keeps numbers numeric so mongo range operators compare
// them as such, everything else stays a string
func parseFilterValue(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}

func parseSort(raw string) bson.D {
	if raw == "" {
		raw = defaultSort
	}

	sort := bson.D{}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(field, "-") {
			order = -1
			field = field[1:]
		}
		sort = append(sort, primitive.E{Key: field, Value: order})
	}
	return sort
}
