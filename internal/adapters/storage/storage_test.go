package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	endpoint string
}

func (c testConfig) GetMinIOEndpoint() string     { return c.endpoint }
func (c testConfig) GetMinIOAccessKey() string    { return "access" }
func (c testConfig) GetMinIOSecretKey() string    { return "secret" }
func (c testConfig) GetMinIOUseSSL() bool         { return false }
func (c testConfig) GetMinIOBucket() string       { return "standardized-lists" }
func (c testConfig) GetMinIOObjectPrefix() string { return "exports" }
func (c testConfig) IsMinIOEnabled() bool         { return c.endpoint != "" }

func TestObjectKey(t *testing.T) {
	runID := uuid.NewString()

	key, err := ObjectKey("exports/", runID, "kontakte.csv")
	require.NoError(t, err)
	require.Equal(t, "exports/"+runID+"/kontakte.csv", key)

	key, err = ObjectKey("", runID, "sub/dir/kontakte.csv")
	require.NoError(t, err)
	require.Equal(t, runID+"/kontakte.csv", key)
}

func TestObjectKeyRejectsBadInput(t *testing.T) {
	_, err := ObjectKey("exports", "not-a-uuid", "kontakte.csv")
	require.Error(t, err)

	_, err = ObjectKey("exports", uuid.NewString(), "")
	require.Error(t, err)
}

func TestNewMinIOService(t *testing.T) {
	_, err := NewMinIOService(testConfig{})
	require.Error(t, err)

	svc, err := NewMinIOService(testConfig{endpoint: "localhost:9000"})
	require.NoError(t, err)
	require.Equal(t, "standardized-lists", svc.bucket)
	require.Equal(t, "exports", svc.prefix)
}
