package vision

import "errors"

var (
	// ErrDecode means the submitted bytes are not an image in a supported encoding.
	ErrDecode = errors.New("image could not be decoded")
	// ErrModelUnavailable means the model artifact could not be fetched or loaded.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInference means the classifier failed on a decoded image.
	ErrInference = errors.New("inference failed")
)
