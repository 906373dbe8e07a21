package services

// MessageNotFound is the sentinel message carried by a failed Result when the
// requested project is absent or not visible to the caller. Boundary layers
// map it to a 404.
const MessageNotFound = "Project not found"

// Result is the outcome of a service operation. Failed results carry either a
// human-readable business message or a field-keyed validation error map,
// never both.
type Result[T any] struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    T                   `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func ok[T any](data T, message string) *Result[T] {
	return &Result[T]{Success: true, Message: message, Data: data}
}

func fail[T any](message string) *Result[T] {
	return &Result[T]{Message: message}
}

func notFound[T any]() *Result[T] {
	return fail[T](MessageNotFound)
}

func invalid[T any](errors map[string][]string) *Result[T] {
	return &Result[T]{Message: "Validation failed", Errors: errors}
}

// NotFound reports whether the result failed because the project was absent
// or invisible.
func (r *Result[T]) NotFound() bool {
	return !r.Success && r.Message == MessageNotFound
}

// Invalid reports whether the result failed validation.
func (r *Result[T]) Invalid() bool {
	return !r.Success && len(r.Errors) > 0
}
