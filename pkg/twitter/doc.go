// Package twitter is a small client for the Twitter REST API v1.1.
//
// Requests are signed with OAuth 1.0a from four secrets: consumer key,
// consumer secret, access token and access token secret. Non-2xx
// responses become *errors.Error values typed by status, carrying the
// messages of the Twitter error envelope.
//
// Example usage:
//
//	client := twitter.NewClient(creds, 30*time.Second, log)
//
//	user, err := client.VerifyCredentials(ctx)
//	if err != nil {
//	    if errors.IsType(err, errors.ErrorTypeAuth) {
//	        // rejected credentials
//	    }
//	}
//
//	likes, err := client.GetFavorites(ctx, "", 200)
package twitter
