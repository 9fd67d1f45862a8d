package store

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/shashiranjanraj/inventory/app/models"
	"github.com/shashiranjanraj/inventory/pkg/validate"
)

// Values maps column names to the values of a mutation.
type Values map[string]any

type columnRule struct {
	column string
	check  func(column string, v any) (any, error)
}

// rules run in this order; the first failure wins.
var rules = []columnRule{
	{models.ColumnName, requiredText},
	{models.ColumnPrice, nonNegativeInt},
	{models.ColumnQuantity, nonNegativeInt},
	{models.ColumnSupplierName, requiredText},
	{models.ColumnSupplierPhone, requiredText},
}

// checkValues validates values and returns them coerced to column types.
// With partial set only the columns present are checked, as for an update;
// otherwise every rule column is required.
func checkValues(values Values, partial bool) (map[string]any, error) {
	if _, ok := values[models.ColumnID]; ok {
		return nil, InvalidField(models.ColumnID)
	}

	out := make(map[string]any, len(values))
	for _, r := range rules {
		v, ok := values[r.column]
		if !ok && partial {
			continue
		}
		coerced, err := r.check(r.column, v)
		if err != nil {
			return nil, err
		}
		out[r.column] = coerced
	}
	return out, nil
}

// unknownColumns lists keys of values that are not products columns.
func unknownColumns(values Values) []string {
	var unknown []string
	for k := range values {
		if !models.IsColumn(k) {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

func requiredText(column string, v any) (any, error) {
	if v == nil {
		return nil, MissingField(column)
	}
	s, err := cast.ToStringE(v)
	if err != nil || validate.Var(s, "required") != nil {
		return nil, MissingField(column)
	}
	return s, nil
}

func nonNegativeInt(column string, v any) (any, error) {
	n, ok := toInt64(v)
	if !ok || validate.Var(n, "gte=0") != nil {
		return nil, InvalidField(column)
	}
	return n, nil
}

// toInt64 accepts integers, integral floats and base-10 integer strings.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
	}
	n, err := cast.ToInt64E(v)
	return n, err == nil
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
