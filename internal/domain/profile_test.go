package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholdProfileIsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultThresholdProfile().Validate())
}

func TestThresholdProfileValidate(t *testing.T) {
	t.Parallel()

	p := DefaultThresholdProfile()
	p.MinDocs = -1
	p.MaxAttempts = 0
	p.LowRatioMax = 1.5

	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_docs")
	assert.Contains(t, err.Error(), "max_attempts")
	assert.Contains(t, err.Error(), "low_ratio_max")
}

func TestClassificationResolve(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultProvenance(), MalformedClassification("not json").Resolve())

	empty := ""
	pub := "Reuters"
	c := Classification{Parsed: Provenance{SourceType: "unknown", Publisher: &pub, Date: &empty}}
	got := c.Resolve()
	assert.Equal(t, SourceSecondary, got.SourceType)
	assert.Equal(t, CategoryNews, got.SourceCategory)
	require.NotNil(t, got.Publisher)
	assert.Equal(t, "Reuters", *got.Publisher)
	assert.Nil(t, got.Date)

	c = Classification{Parsed: Provenance{SourceType: SourcePrimary, SourceCategory: CategoryCompany}}
	got = c.Resolve()
	assert.Equal(t, SourcePrimary, got.SourceType)
	assert.Equal(t, CategoryCompany, got.SourceCategory)
}
