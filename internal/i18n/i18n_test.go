package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "Insufficient stock for Mug", T("en", KeyOrderInsufficientStock, "Mug"))
	assert.Equal(t, "Mug 库存不足", T("zh_CN", KeyOrderInsufficientStock, "Mug"))
	assert.Equal(t, "Product not found", T("fr", KeyProductNotFound))
	assert.Equal(t, "missing.key", T("en", "missing.key"))
	assert.Equal(t, []string{"en", "zh_CN"}, GetSupportedLanguages())
}

func TestLocalesDefineSameKeys(t *testing.T) {
	require.NoError(t, Initialize("en"))

	en := instance.translations["en"]
	zh := instance.translations["zh_CN"]
	for key := range en {
		assert.Contains(t, zh, key)
	}
	assert.Len(t, zh, len(en))
}
