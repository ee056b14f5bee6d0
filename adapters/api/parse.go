package api

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"priorelicit/domain/elicit"
)

// ParseDataset extracts entities from a JSON document. dataPath selects an array of
// objects (or a single object); numeric fields and numeric strings become variable
// values, anything else is treated as missing. Field names are returned in order of
// first appearance.
func ParseDataset(body []byte, dataPath string) (elicit.Dataset, []string, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, fmt.Errorf("response is not valid JSON")
	}
	result := gjson.ParseBytes(body)
	if dataPath != "" && dataPath != "." {
		result = result.Get(dataPath)
	}
	if !result.Exists() {
		return nil, nil, fmt.Errorf("data path '%s' not found in response", dataPath)
	}

	var items []gjson.Result
	switch {
	case result.IsArray():
		items = result.Array()
	case result.IsObject():
		items = []gjson.Result{result}
	default:
		return nil, nil, fmt.Errorf("data path '%s' is not an array or object", dataPath)
	}

	var headers []string
	seen := make(map[string]bool)
	data := make(elicit.Dataset, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, nil, fmt.Errorf("entity %d is not an object", i)
		}
		entity := make(elicit.Entity)
		item.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if !seen[name] {
				seen[name] = true
				headers = append(headers, name)
			}
			if v, ok := numericValue(value); ok {
				entity[name] = v
			}
			return true
		})
		data = append(data, entity)
	}
	return data, headers, nil
}

func numericValue(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(v.Str, 64)
		return f, err == nil
	}
	return 0, false
}
