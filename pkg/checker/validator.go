package checker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/statuswatch/statuswatch/pkg/models"
)

var (
	errUnknownValidator  = errors.New("unknown validator kind")
	errMissingPath       = errors.New("json_field validator requires a path")
	errMissingSubstring  = errors.New("body_contains validator requires a substring")
	errInvalidJSONLookup = errors.New("response body is not valid JSON")
)

// ValidatorConfig describes a response validator in endpoint configuration.
// Kind selects the strategy; the remaining fields parameterize it.
type ValidatorConfig struct {
	Kind string `json:"kind"`

	// json_field: gjson path into the response body. When Equals is empty the
	// field only has to exist and be non-null.
	Path   string `json:"path,omitempty"`
	Equals string `json:"equals,omitempty"`

	// body_contains: required substring.
	Substring string `json:"substring,omitempty"`
}

// BuildValidator turns a ValidatorConfig into a ResponseValidator.
func BuildValidator(cfg ValidatorConfig) (models.ResponseValidator, error) {
	switch cfg.Kind {
	case "json_field":
		if cfg.Path == "" {
			return nil, errMissingPath
		}

		return &jsonFieldValidator{path: cfg.Path, equals: cfg.Equals}, nil
	case "body_contains":
		if cfg.Substring == "" {
			return nil, errMissingSubstring
		}

		return &bodyContainsValidator{substring: cfg.Substring}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownValidator, cfg.Kind)
	}
}

// jsonFieldValidator checks a gjson path in the response body, optionally
// against an expected value.
type jsonFieldValidator struct {
	path   string
	equals string
}

func (v *jsonFieldValidator) Validate(_ int, body []byte) (bool, error) {
	if !gjson.ValidBytes(body) {
		return false, errInvalidJSONLookup
	}

	value := gjson.GetBytes(body, v.path)
	if !value.Exists() {
		return false, nil
	}

	if v.equals == "" {
		return true, nil
	}

	return value.String() == v.equals, nil
}

// bodyContainsValidator passes when the body contains a fixed substring.
type bodyContainsValidator struct {
	substring string
}

func (v *bodyContainsValidator) Validate(_ int, body []byte) (bool, error) {
	return strings.Contains(string(body), v.substring), nil
}
