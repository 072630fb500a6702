package error

// GenericError is implemented by errors that know their API code and HTTP status.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
