package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	return storage
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	storage := newTestStorage(t)

	blob := []byte(`{"api_key":"KEY","secret_key":"SECRET","payment_methods":["alipay_cn"]}`)
	require.NoError(t, storage.SaveMerchantSettings("m1", "payssion", blob))

	settings, err := storage.LoadMerchantSettings("m1", "payssion")
	require.NoError(t, err)
	assert.Equal(t, "KEY", settings.APIKey)
	assert.Equal(t, "SECRET", settings.SecretKey)
	assert.Equal(t, []string{"alipay_cn"}, settings.EnabledMethods)
	assert.False(t, settings.AllEnabled)
}

func TestSQLiteStorage_SaveRejectsMalformedBlob(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.SaveMerchantSettings("m1", "payssion", []byte(`{"secret_key":"SECRET"}`))
	assert.Error(t, err)

	_, err = storage.LoadMerchantSettings("m1", "payssion")
	assert.Error(t, err, "a rejected blob must not be persisted")
}

func TestSQLiteStorage_SaveOverwrites(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveMerchantSettings("m1", "payssion",
		[]byte(`{"api_key":"OLD","secret_key":"SECRET","payment_methods":-1}`)))
	require.NoError(t, storage.SaveMerchantSettings("m1", "payssion",
		[]byte(`{"api_key":"NEW","secret_key":"SECRET","payment_methods":-1}`)))

	settings, err := storage.LoadMerchantSettings("m1", "payssion")
	require.NoError(t, err)
	assert.Equal(t, "NEW", settings.APIKey)
}

func TestSQLiteStorage_MerchantsIsolated(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveMerchantSettings("m1", "payssion",
		[]byte(`{"api_key":"M1","secret_key":"S1","payment_methods":-1}`)))
	require.NoError(t, storage.SaveMerchantSettings("m2", "payssion",
		[]byte(`{"api_key":"M2","secret_key":"S2","payment_methods":-1}`)))

	first, err := storage.LoadMerchantSettings("m1", "payssion")
	require.NoError(t, err)
	second, err := storage.LoadMerchantSettings("m2", "payssion")
	require.NoError(t, err)

	assert.Equal(t, "M1", first.APIKey)
	assert.Equal(t, "M2", second.APIKey)
}

func TestSQLiteStorage_Delete(t *testing.T) {
	storage := newTestStorage(t)

	require.NoError(t, storage.SaveMerchantSettings("m1", "payssion",
		[]byte(`{"api_key":"KEY","secret_key":"SECRET","payment_methods":-1}`)))
	require.NoError(t, storage.DeleteMerchantSettings("m1", "payssion"))

	_, err := storage.LoadMerchantSettings("m1", "payssion")
	assert.Error(t, err)

	assert.Error(t, storage.DeleteMerchantSettings("m1", "payssion"))
}
