// Package catapi provides a typed HTTP client for TheCatAPI.
//
// # Overview
//
// The client turns a typed query into a GET request, decodes the JSON body
// into the query's result type, and classifies every failure into one of a
// fixed set of kinds. It also downloads and decodes the raw image bodies the
// search results point at.
//
// # Usage
//
//	client, err := catapi.NewClient(catapi.Options{APIKey: key})
//	if err != nil {
//		return err
//	}
//	images, err := client.SearchImages(ctx, catapi.SearchQuery{Limit: 10})
//	if err != nil {
//		log.Printf("search failed: %s", catapi.Message(err))
//	}
//	pic, err := client.FetchPicture(ctx, images[0].URL)
//
// Custom endpoints go through the generic Do:
//
//	breeds, err := catapi.Do(ctx, client, catapi.Query[[]catapi.Breed]{Path: "/breeds"})
//
// # Endpoints
//
//   - GET {base}/images/search?limit=n[&breed_ids=..][&has_breeds=1][&order=..]
//   - GET {base}/breeds
//   - GET {image url} for raw jpeg, png or gif bytes
//
// # Errors
//
// Every failure is a *Error carrying a Kind:
//
//   - KindInvalidRequest: malformed base URL, empty parameter, bad limit
//   - KindTransport: DNS, connection, timeout, cancellation
//   - KindHTTPStatus: any status outside 2xx (Status holds the code)
//   - KindDecode: malformed JSON, missing id/url, undecodable or oversize image
//   - KindNoData: empty image body
//
// Use KindOf or errors.As to inspect them and Message for a status-line string.
//
// # Behavior
//
// Calls carry no shared mutable state and are safe for concurrent use. There
// are no retries; each request is bounded by Options.Timeout (15s default).
// The API key is only sent to the API host, never to the image CDN.
package catapi
