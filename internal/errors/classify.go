package errors

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryValidation indicates bad input on an add or update.
	CategoryValidation
	// CategoryNotFound indicates an operation on a missing id.
	CategoryNotFound
	// CategoryStorage indicates a persistence failure.
	CategoryStorage
	// CategoryRender indicates a view section failed to compute.
	CategoryRender
	// CategoryUser indicates another user-fixable error.
	CategoryUser
	// CategorySystem indicates a system-level error.
	CategorySystem
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not_found"
	case CategoryStorage:
		return "storage"
	case CategoryRender:
		return "render"
	case CategoryUser:
		return "user"
	case CategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case IsValidationError(err):
		return CategoryValidation
	case IsNotFound(err):
		return CategoryNotFound
	case IsStorageError(err):
		return CategoryStorage
	case IsRenderError(err):
		return CategoryRender
	case IsUserError(err):
		return CategoryUser
	case IsSystemError(err):
		return CategorySystem
	default:
		return CategoryUnknown
	}
}
