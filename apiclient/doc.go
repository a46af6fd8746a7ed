// Package apiclient is a reusable client core for JSON and multipart
// HTTP APIs. It survives transient network failures with jittered
// exponential backoff, transparently refreshes expiring credentials
// (including one forced refresh after a 401), and translates
// transport and HTTP outcomes into a closed, catchable error
// taxonomy.
//
// Per-service method wrappers are expected to be thin layers over
// Client.Do or the typed Get/Post/Put/Delete helpers.
//
// # Basic usage
//
//	client, err := apiclient.New(apiclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Auth:    apiclient.NewStaticTokenAuth("my-token"),
//	})
//
//	resp, err := client.Do(ctx, apiclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/samples/123",
//	})
//
// # With refreshing OAuth2 credentials
//
//	auth := apiclient.NewOAuthAuth(fetchToken,
//	    apiclient.WithRefreshFunc(exchangeRefreshToken),
//	)
//	client, err := apiclient.New(apiclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Auth:    auth,
//	})
//
// Error outcomes are *Error values; branch with the Is* helpers or
// KindOf:
//
//	if apiclient.IsNotFound(err) { ... }
package apiclient
