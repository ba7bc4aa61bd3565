// Package mapserver gates OGC map queries (WMS, WFS) in front of the
// upstream map service.
package mapserver

import (
	"net/url"
	"strings"
)

// OWS exception codes.
const (
	MissingParameterValue = "MissingParameterValue"
	InvalidParameterValue = "InvalidParameterValue"
	OperationNotSupported = "OperationNotSupported"
)

// Query is an OGC GET request. Parameter names are matched case-insensitively.
type Query struct {
	Service  string
	Request  string
	Version  string
	TypeName string
}

// ParseQuery reads the OGC parameters from values.
func ParseQuery(values url.Values) Query {
	var q Query
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := strings.TrimSpace(vals[0])
		switch strings.ToLower(key) {
		case "service":
			q.Service = v
		case "request":
			q.Request = v
		case "version":
			q.Version = v
		case "typename", "typenames":
			q.TypeName = v
		}
	}
	return q
}

// Exception is a single OWS exception.
type Exception struct {
	Code    string
	Locator string
	Text    string
}

func (e *Exception) Error() string {
	return e.Code + " (" + e.Locator + "): " + e.Text
}

// operations lists the requests allowed per service, keyed by upper-case names.
var operations = map[string]map[string]bool{
	"WMS": {"GETCAPABILITIES": true, "GETMAP": true, "GETFEATUREINFO": true, "GETLEGENDGRAPHIC": true},
	"WFS": {"GETCAPABILITIES": true, "DESCRIBEFEATURETYPE": true, "GETFEATURE": true},
}

// Validate checks q against the allowed services.
func (q Query) Validate(allowed []string) *Exception {
	if q.Service == "" {
		return &Exception{Code: MissingParameterValue, Locator: "service", Text: "service parameter is missing"}
	}
	service := strings.ToUpper(q.Service)
	if !contains(allowed, service) {
		return &Exception{Code: InvalidParameterValue, Locator: "service", Text: "service " + q.Service + " is not supported"}
	}
	if q.Request == "" {
		return &Exception{Code: MissingParameterValue, Locator: "request", Text: "request parameter is missing"}
	}
	ops, ok := operations[service]
	request := strings.ToUpper(q.Request)
	if ok && !ops[request] {
		return &Exception{Code: OperationNotSupported, Locator: "request", Text: "request " + q.Request + " is not supported by " + service}
	}
	if request != "GETCAPABILITIES" && q.Version == "" {
		return &Exception{Code: MissingParameterValue, Locator: "version", Text: "version parameter is missing"}
	}
	if request == "GETFEATURE" && q.TypeName == "" {
		return &Exception{Code: MissingParameterValue, Locator: "typeName", Text: "typeName parameter is missing"}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
