// Package apperr defines the error taxonomy shared by the pipeline, its
// collaborators and the hosts that display its messages.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for every recognised failure kind.
// Wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrConfiguration indicates required configuration (usually a credential) is missing.
	// Fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrAPIKey indicates the model provider rejected or never received a credential.
	ErrAPIKey = errors.New("api key error")

	// ErrDocumentTooLarge indicates an uploaded document exceeds the configured size limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrExtractionFailed indicates a document was read but yielded no usable text.
	ErrExtractionFailed = errors.New("pdf extraction failed")

	// ErrModelInvocation indicates the model call itself failed (transport, quota, bad response).
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrInvalidFileType indicates an upload that is not a PDF.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrDocumentNotFound indicates a document path that does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidQuery indicates an empty or whitespace-only query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrCancelled indicates the caller gave up before the pipeline finished.
	ErrCancelled = errors.New("request cancelled")
)

// Kind classifies an error for display and logging.
type Kind string

const (
	KindConfiguration    Kind = "ConfigurationError"
	KindAPIKey           Kind = "APIKeyError"
	KindDocumentTooLarge Kind = "DocumentTooLarge"
	KindExtractionFailed Kind = "ExtractionFailed"
	KindModelInvocation  Kind = "ModelInvocationFailed"
	KindInvalidFileType  Kind = "InvalidFileType"
	KindDocumentNotFound Kind = "DocumentNotFound"
	KindInvalidQuery     Kind = "InvalidQuery"
	KindCancelled        Kind = "Cancelled"
	KindUnexpected       Kind = "UnexpectedError"
)

// DefaultFallback prefixes messages for errors of no recognised kind.
const DefaultFallback = "Failed to process your query"

// kinds is checked in order; the first sentinel found in the chain wins.
var kinds = []struct {
	err  error
	kind Kind
	msg  string
}{
	{ErrAPIKey, KindAPIKey, "API key error: Please check your API key configuration."},
	{ErrDocumentTooLarge, KindDocumentTooLarge, "Document too large: Please upload a smaller document."},
	{ErrExtractionFailed, KindExtractionFailed, "Error processing PDF: Could not extract text from the document. Please make sure it's a valid, readable PDF."},
	{ErrInvalidFileType, KindInvalidFileType, "Invalid file type: Only PDF documents are supported."},
	{ErrDocumentNotFound, KindDocumentNotFound, "Error: Document not found."},
	{ErrInvalidQuery, KindInvalidQuery, "Please enter a question."},
	{ErrCancelled, KindCancelled, "Request cancelled."},
	{ErrConfiguration, KindConfiguration, "Configuration error: Please check the application configuration."},
	{ErrModelInvocation, KindModelInvocation, "Error getting response from the AI model. Please try again later."},
}

// KindOf returns the kind of err, or KindUnexpected when no sentinel matches.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnexpected
}

// UserMessage converts err into the message shown to the user.
// Unrecognised errors are rendered as "{fallback}: {err}".
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.msg
		}
	}
	if fallback == "" {
		fallback = DefaultFallback
	}
	return fmt.Sprintf("%s: %s", fallback, err.Error())
}
