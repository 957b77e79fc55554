// Where: internal/plugin/validate.go
// What: JSON schema validation of NEWRELIC_ settings.
// Why: Reject bad monitors and enums before calling NerdGraph.
package plugin

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"

	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
	"github.com/poruru-code/tutor-newrelic/internal/newrelic"
)

const schemaURL = "settings.schema.json"

//go:embed schema/settings.schema.json
var settingsSchema []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Violation is one schema failure located by JSON pointer.
type Violation struct {
	Location string
	Message  string
}

// ValidateSettings checks the NEWRELIC_ subset of cfg against the bundled schema.
// A nil slice with a nil error means the settings are valid.
func ValidateSettings(cfg config.Config) ([]Violation, error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, err
	}

	content, err := yamlv3.Marshal(map[string]any(cfg.WithPrefix(meta.SettingPrefix)))
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", err)
	}
	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	canonicalize(document)

	err = sch.Validate(document)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	var violations []Violation
	for _, unit := range verr.BasicOutput().Errors {
		if unit.InstanceLocation == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}
		violations = append(violations, Violation{Location: unit.InstanceLocation, Message: unit.Error})
	}
	if len(violations) == 0 {
		violations = append(violations, Violation{Location: "/", Message: verr.Error()})
	}
	return violations, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(settingsSchema)); err != nil {
			schemaErr = fmt.Errorf("load settings schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// canonicalize mirrors the normalization newrelic.SettingsFrom applies.
func canonicalize(document any) {
	root, ok := document.(map[string]any)
	if !ok {
		return
	}
	if region, ok := root[newrelic.KeyRegionCode].(string); ok {
		root[newrelic.KeyRegionCode] = strings.ToUpper(strings.TrimSpace(region))
	}
}
