package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"favdupes/pkg/config"
)

func testCreds(profile string) *Credentials {
	return &Credentials{
		Profile:           profile,
		ConsumerKey:       "consumer_key_123456",
		ConsumerSecret:    "consumer_secret_123456",
		AccessToken:       "access_token_123456",
		AccessTokenSecret: "access_secret_123456",
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConsumerKey, EnvConsumerSecret, EnvAccessToken, EnvAccessTokenSecret} {
		t.Setenv(k, "")
	}
}

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, testCreds("a").Validate())

	var nilCreds *Credentials
	assert.ErrorIs(t, nilCreds.Validate(), ErrInvalidCredentials)

	err := (&Credentials{ConsumerKey: "ck"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumer secret is required")
	assert.Contains(t, err.Error(), "access token is required")
	assert.Contains(t, err.Error(), "access token secret is required")
	assert.NotContains(t, err.Error(), "consumer key is required")
}

func TestFromConfig(t *testing.T) {
	creds := FromConfig(config.TwitterConfig{
		ConsumerKey: "a", ConsumerSecret: "b", AccessToken: "c", AccessTokenSecret: "d",
	})
	assert.Equal(t, DefaultProfile, creds.Profile)
	assert.Equal(t, "a", creds.ConsumerKey)
	assert.Equal(t, "d", creds.AccessTokenSecret)
	assert.NoError(t, creds.Validate())
}

func TestCredentialManager(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(testCreds("work")))
	assert.Equal(t, 1, store.Count())

	got, err := manager.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "access_token_123456", got.AccessToken)
	assert.False(t, got.LastModified.IsZero())

	list, err := manager.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, manager.Delete("work"))
	_, err = manager.Retrieve("work")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.ErrorIs(t, manager.Delete("work"), ErrCredentialsNotFound)
}

func TestManagerStoreRejectsIncomplete(t *testing.T) {
	manager, store := NewMockManager()

	err := manager.Store(&Credentials{Profile: "x", ConsumerKey: "only"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 0, store.Count())
}

func TestManagerStoreDefaultsProfile(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(testCreds("")))
	assert.True(t, store.Exists(DefaultProfile))
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	require.NoError(t, manager.Store(testCreds("p")))
	assert.Equal(t, 0, broken.Count())
	assert.Equal(t, 1, working.Count())

	got, err := manager.Retrieve("p")
	require.NoError(t, err)
	assert.Equal(t, "p", got.Profile)
}

func TestManagerStoreAllFail(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("nope")

	err := NewManagerWithStores(broken).Store(testCreds("p"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	assert.ErrorIs(t, NewManagerWithStores().Store(testCreds("p")), ErrStoreUnavailable)
}

func TestManagerListNewestWins(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	old := testCreds("p")
	old.AccessToken = "old"
	old.LastModified = time.Now().Add(-time.Hour)
	require.NoError(t, older.Store(old))

	fresh := testCreds("p")
	fresh.AccessToken = "new"
	fresh.LastModified = time.Now()
	require.NoError(t, newer.Store(fresh))

	other := testCreds("q")
	other.LastModified = time.Now().Add(-2 * time.Hour)
	require.NoError(t, older.Store(other))

	list, err := NewManagerWithStores(older, newer).List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p", list[0].Profile)
	assert.Equal(t, "new", list[0].AccessToken)
	assert.Equal(t, "q", list[1].Profile)
}

func TestManagerResolve(t *testing.T) {
	manager, _ := NewMockManager()
	require.NoError(t, manager.Store(testCreds("named")))

	t.Run("named profile", func(t *testing.T) {
		got, err := manager.Resolve("named", nil)
		require.NoError(t, err)
		assert.Equal(t, "named", got.Profile)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := manager.Resolve("ghost", testCreds("cfg"))
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
	})

	t.Run("complete fallback", func(t *testing.T) {
		got, err := manager.Resolve("", testCreds("cfg"))
		require.NoError(t, err)
		assert.Equal(t, "cfg", got.Profile)
	})

	t.Run("incomplete fallback uses stored", func(t *testing.T) {
		got, err := manager.Resolve("", &Credentials{ConsumerKey: "x"})
		require.NoError(t, err)
		assert.Equal(t, "named", got.Profile)
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		empty, _ := NewMockManager()
		_, err := empty.Resolve("", nil)
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
	})
}

func TestSanitizeCredentials(t *testing.T) {
	creds := testCreds("p")
	creds.ScreenName = "someone"

	s := SanitizeCredentials(creds)
	assert.Equal(t, "cons...3456", s.ConsumerKey)
	assert.NotEqual(t, creds.AccessTokenSecret, s.AccessTokenSecret)
	assert.Equal(t, "someone", s.ScreenName)
	assert.Equal(t, "********", maskString("short"))
	assert.Equal(t, "", maskString(""))

	partial := SanitizeCredentials(&Credentials{ConsumerKey: "consumer-key-1234"})
	assert.Equal(t, "cons...1234", partial.ConsumerKey)
	assert.Empty(t, partial.ConsumerSecret)
	assert.Empty(t, partial.AccessToken)
	assert.Empty(t, partial.AccessTokenSecret)
	assert.Nil(t, SanitizeCredentials(nil))
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "credentials.enc")
	store, err := NewEncryptedFileStoreWithPassphrase(path, "test_passphrase_123")
	require.NoError(t, err)

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, store.Store(testCreds("a")))
	require.NoError(t, store.Store(testCreds("b")))
	assert.True(t, store.Exists("a"))

	got, err := store.Retrieve("a")
	require.NoError(t, err)
	assert.Equal(t, "consumer_secret_123456", got.ConsumerSecret)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "consumer_secret_123456")
	assert.NotContains(t, string(content), "access_token_123456")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Run("wrong passphrase", func(t *testing.T) {
		other, err := NewEncryptedFileStoreWithPassphrase(path, "wrong")
		require.NoError(t, err)
		_, err = other.Retrieve("a")
		assert.Error(t, err)
	})

	require.NoError(t, store.Delete("a"))
	assert.ErrorIs(t, store.Delete("a"), ErrCredentialsNotFound)
	require.NoError(t, store.Delete("b"))
	assert.NoFileExists(t, path)

	_, err = store.Retrieve("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEncryptedFileStorePassphraseFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(passphraseEnv, "from-env")

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", store.passphrase)
	assert.NoFileExists(t, filepath.Join(dir, ".passphrase"))
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(passphraseEnv, "")

	first, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".passphrase"))

	second, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.Equal(t, first.passphrase, second.passphrase)
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	clearEnv(t)
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	t.Setenv(EnvConsumerKey, "ck")
	t.Setenv(EnvConsumerSecret, "cs")
	t.Setenv(EnvAccessToken, "at")
	t.Setenv(EnvAccessTokenSecret, "ats")

	creds, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, creds.Profile)
	assert.Equal(t, "ats", creds.AccessTokenSecret)
	assert.True(t, store.Exists(DefaultProfile))
	assert.False(t, store.Exists("other"))

	assert.ErrorIs(t, store.Store(creds), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete(DefaultProfile), ErrStoreUnavailable)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testCreds("a")))
	require.NoError(t, store.Store(testCreds("b")))
	assert.True(t, store.Exists("a"))

	got, err := store.Retrieve("a")
	require.NoError(t, err)
	assert.Equal(t, "consumer_key_123456", got.ConsumerKey)

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete("a"))
	assert.ErrorIs(t, store.Delete("a"), ErrCredentialsNotFound)
	_, err = store.Retrieve("a")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	list, err = store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Profile)
}

func TestShowSetupGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowSetupGuide(&buf)
	out := buf.String()
	assert.Contains(t, out, "consumer key")
	assert.Contains(t, out, "access token secret")
	assert.Contains(t, out, EnvConsumerKey)
}
