package tdsqlpostgresql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMissingFieldList is returned when a config carries no sink fields.
var ErrMissingFieldList = errors.New("tdsqlpostgresql: sink field list is empty")

// SinkConfig is the typed form of the values collected by the form.
type SinkConfig struct {
	JDBCURL              string        `mapstructure:"jdbcUrl" json:"jdbcUrl"`
	SchemaName           string        `mapstructure:"schemaName" json:"schemaName"`
	TableName            string        `mapstructure:"tableName" json:"tableName"`
	PrimaryKey           string        `mapstructure:"primaryKey" json:"primaryKey"`
	EnableCreateResource int           `mapstructure:"enableCreateResource" json:"enableCreateResource"`
	Username             string        `mapstructure:"username" json:"username"`
	Password             string        `mapstructure:"password" json:"password"`
	Status               int           `mapstructure:"status" json:"status,omitempty"`
	Fields               []FieldConfig `mapstructure:"sinkFieldList" json:"sinkFieldList"`
}

// FieldConfig is one row of the sink field list.
type FieldConfig struct {
	SourceFieldName string `mapstructure:"sourceFieldName" json:"sourceFieldName"`
	SourceFieldType string `mapstructure:"sourceFieldType" json:"sourceFieldType"`
	FieldName       string `mapstructure:"fieldName" json:"fieldName"`
	FieldType       string `mapstructure:"fieldType" json:"fieldType"`
	IsMetaField     int    `mapstructure:"isMetaField" json:"isMetaField"`
	FieldFormat     string `mapstructure:"fieldFormat" json:"fieldFormat,omitempty"`
	FieldComment    string `mapstructure:"fieldComment" json:"fieldComment,omitempty"`
}

// DecodeConfig converts submitted form values into a SinkConfig. Numbers may
// arrive as strings or float64 and unknown keys are ignored.
func DecodeConfig(values map[string]any) (SinkConfig, error) {
	var cfg SinkConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
		TagName:          "mapstructure",
	})
	if err != nil {
		return SinkConfig{}, fmt.Errorf("tdsqlpostgresql: build decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return SinkConfig{}, fmt.Errorf("tdsqlpostgresql: decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *SinkConfig) normalize() {
	c.JDBCURL = strings.TrimSpace(c.JDBCURL)
	c.SchemaName = strings.TrimSpace(c.SchemaName)
	c.TableName = strings.TrimSpace(c.TableName)
	c.Username = strings.TrimSpace(c.Username)
	for i := range c.Fields {
		f := &c.Fields[i]
		f.FieldName = strings.TrimSpace(f.FieldName)
		f.FieldType = strings.ToUpper(strings.TrimSpace(f.FieldType))
		f.FieldFormat = strings.TrimSpace(f.FieldFormat)
	}
}

// CreateResource reports whether the destination table should be created or
// extended before the sink starts.
func (c SinkConfig) CreateResource() bool {
	return c.EnableCreateResource == 1
}

// PrimaryKeys splits the comma separated primary key into column names.
func (c SinkConfig) PrimaryKeys() []string {
	var keys []string
	for _, part := range strings.Split(c.PrimaryKey, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

// Check verifies the invariants resource creation depends on: a target
// table, known field types and primary keys naming declared fields.
func (c SinkConfig) Check() error {
	if c.SchemaName == "" || c.TableName == "" {
		return fmt.Errorf("tdsqlpostgresql: schema and table name are required")
	}
	if len(c.Fields) == 0 {
		return ErrMissingFieldList
	}
	declared := make(map[string]struct{}, len(c.Fields))
	for i, f := range c.Fields {
		if f.FieldName == "" {
			return fmt.Errorf("tdsqlpostgresql: field %d has no name", i)
		}
		if !IsFieldType(f.FieldType) {
			return fmt.Errorf("tdsqlpostgresql: field %q has unknown type %q", f.FieldName, f.FieldType)
		}
		if _, dup := declared[f.FieldName]; dup {
			return fmt.Errorf("tdsqlpostgresql: field %q declared twice", f.FieldName)
		}
		declared[f.FieldName] = struct{}{}
	}
	for _, key := range c.PrimaryKeys() {
		if _, ok := declared[key]; !ok {
			return fmt.Errorf("tdsqlpostgresql: primary key %q is not a sink field", key)
		}
	}
	return nil
}
