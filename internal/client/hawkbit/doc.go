// Package hawkbit is a client for the hawkBit management REST API.
//
// It speaks JSON and multipart over go-retryablehttp with basic
// authentication, follows the "_links" hyperlinks returned by the server and
// reports failures as *APIError values carrying the originating status code.
package hawkbit
