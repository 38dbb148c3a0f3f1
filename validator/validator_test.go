package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type startSyncInput struct {
	Provider  string `json:"provider" validate:"required,provider"`
	ProjectID int64  `json:"project_id" validate:"required,gt=0"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()

	err := v.Validate(&startSyncInput{Provider: "dropbox", ProjectID: 1})

	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	v := New()

	err := v.Validate(&startSyncInput{Provider: "google"})

	assert.Error(t, err)
	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 1)
	assert.Equal(t, "project_id", verrs[0].Field)
	assert.Equal(t, "required", verrs[0].Tag)
}

func TestValidate_UnknownProvider(t *testing.T) {
	v := New()

	err := v.Validate(&startSyncInput{Provider: "box", ProjectID: 1})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "provider must be one of")
}
