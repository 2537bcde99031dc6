package services

// InvalidInputError covers malformed or unusable caller input, such as a
// URL no video ID can be extracted from. Surfaces as 400.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

// NotFoundError surfaces as 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
