package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyed struct {
	Name string `json:"name" validate:"required"`
	PK   string `json:"pk" validate:"keylist"`
	Size int    `json:"batchSize" validate:"gt=0"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   keyed
		wantErr string
	}{
		{name: "valid", input: keyed{Name: "item", PK: "id, cat.id", Size: 10}},
		{name: "empty pk allowed", input: keyed{Name: "item", Size: 10}},
		{name: "missing name", input: keyed{PK: "id", Size: 10}, wantErr: "name is a required field"},
		{name: "blank key", input: keyed{Name: "item", PK: "id,,x", Size: 10}, wantErr: "pk must be a comma separated list of column names"},
		{name: "zero batch", input: keyed{Name: "item", Size: 0}, wantErr: "batchSize must be greater than 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.input)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_FieldNames(t *testing.T) {
	type fields struct {
		FromYAML string `yaml:"from_yaml,omitempty" validate:"required"`
		Hidden   string `json:"-" validate:"required"`
	}

	err := Validate(fields{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from_yaml is a required field")
	assert.Contains(t, err.Error(), "Hidden is a required field")
}
