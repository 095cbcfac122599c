package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowSetupGuide explains how to obtain the four OAuth 1.0a secrets
func ShowSetupGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TWITTER API CREDENTIALS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "favdupes signs every request with four secrets from a Twitter app.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Open https://developer.twitter.com/en/portal/dashboard and sign in.")
	fmt.Fprintln(w, "2. Create a project and an app, or pick an existing app.")
	fmt.Fprintln(w, "3. Under User authentication settings, enable OAuth 1.0a with")
	fmt.Fprintln(w, "   \"Read and write\" permissions. Write access is needed to unfavorite.")
	fmt.Fprintln(w, "4. Open Keys and tokens and copy:")
	fmt.Fprintln(w, "     API Key              -> consumer key")
	fmt.Fprintln(w, "     API Key Secret       -> consumer secret")
	fmt.Fprintln(w, "5. Generate an Access Token and Secret for your own account and copy:")
	fmt.Fprintln(w, "     Access Token         -> access token")
	fmt.Fprintln(w, "     Access Token Secret  -> access token secret")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then run one of:")
	fmt.Fprintln(w, "  favdupes auth store            store them in the keychain or encrypted file")
	fmt.Fprintf(w, "  export %s=... (and the other three FAVDUPES_* variables)\n", EnvConsumerKey)
	fmt.Fprintln(w, "  put them in a .env file that is not committed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Regenerate the access token if you change app permissions.")
	fmt.Fprintln(w, rule)
}
