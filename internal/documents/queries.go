package documents

import "encoding/json"

// Queries are serialized in the store's JSON query syntax, e.g.
// {"method":"equal","attribute":"userId","values":["abc"]}.

type query struct {
	Method    string        `json:"method"`
	Attribute string        `json:"attribute,omitempty"`
	Values    []interface{} `json:"values,omitempty"`
}

func (q query) String() string {
	b, _ := json.Marshal(q)
	return string(b)
}

// Equal builds an equality filter on attribute
func Equal(attribute string, value interface{}) string {
	return query{Method: "equal", Attribute: attribute, Values: []interface{}{value}}.String()
}

// OrderDesc builds a descending sort clause on attribute
func OrderDesc(attribute string) string {
	return query{Method: "orderDesc", Attribute: attribute}.String()
}

// OrderAsc builds an ascending sort clause on attribute
func OrderAsc(attribute string) string {
	return query{Method: "orderAsc", Attribute: attribute}.String()
}

// Limit bounds the number of documents returned
func Limit(n int) string {
	return query{Method: "limit", Values: []interface{}{n}}.String()
}
