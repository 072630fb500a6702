package utils

// ResponseData is the JSON envelope returned by the REST API. Status mirrors
// the HTTP status and is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Results any    `json:"results,omitempty"`
}
