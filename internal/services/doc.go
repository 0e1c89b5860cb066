// Package services defines the [Catalog] interface for remote music catalogs and implements it for Spotify and Deezer.
//
// # Catalog Interface
//
// Every provider normalizes tracks, artists and albums into [models.CatalogItem], so stores and views never see
// provider-specific JSON.
//
// # Spotify Implementation
//
// [SpotifyCatalog] authorizes each request with an app credential from a [CredentialSource]. [SessionManager]
// obtains that credential through the OAuth2 client-credentials grant ([clientcredentials.Config]) and collapses
// concurrent acquisitions into one exchange with [singleflight.Group].
//
// Credential expiry is discovered reactively: a 401 response refreshes the credential and replays the call
// exactly once. A second 401 surfaces as a [shared.CatalogError] matching [shared.ErrTokenExpired].
//
// # Deezer Implementation
//
// [DeezerCatalog] queries the public Deezer API, which needs no credential. Deezer reports most failures as
// HTTP 200 responses carrying an "error" object; these are converted to [shared.CatalogError] as well.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ValidationError] : empty query or id, unknown kind
//   - [shared.AuthError] : the token exchange failed or returned no access_token
//   - [shared.CatalogError] : transport failure, timeout or non-success status
//
// Requests are paced with a [rate.Limiter] and bounded by the [http.Client] timeout.
package services
