package config

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/rxtech-lab/argo-flipper/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-flipper/internal/backtest/strategy"
)

// GenerateSchema generates a JSON schema for the Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t.String() == "optional.Option[time.Time]":
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			case t.String() == "time.Duration":
				return &jsonschema.Schema{
					Type:        "string",
					Description: "Go duration, for example 30s",
				}
			case strings.Contains(t.String(), "commission_fee.Broker"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			case strings.Contains(t.String(), "strategy.RuleName"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: strategy.AllRules,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "flipper-backtest-config"
	schema.Description = "Configuration schema for the Flipper backtest"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
