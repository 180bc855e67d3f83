package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriveStore(t *testing.T) {
	t.Run("folder is required", func(t *testing.T) {
		store, err := NewDriveStore(Config{CredentialsFile: "creds.json"})
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("credentials json takes precedence", func(t *testing.T) {
		store, err := NewDriveStore(Config{
			CredentialsFile: "creds.json",
			CredentialsJSON: `{"type":"service_account"}`,
			FolderID:        "folder",
		})
		require.NoError(t, err)
		// credentials + scopes
		assert.Len(t, store.options, 2)
		assert.Equal(t, "folder", store.folderID)
	})
}

func TestDriveStore_CanonicalLink(t *testing.T) {
	store, err := NewDriveStore(Config{FolderID: "folder"})
	require.NoError(t, err)

	assert.Equal(t, "https://drive.google.com/file/d/1AbC/view", store.CanonicalLink("1AbC"))
	assert.Equal(t, store.CanonicalLink("1AbC"), store.CanonicalLink("1AbC"))
	assert.Equal(t, "drive", store.Provider())
}
