package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// UserError Tests
// =============================================================================

func TestNewUserError(t *testing.T) {
	err := NewUserError("invalid input", "try again")
	assert.NotNil(t, err)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "try again", err.Suggestion)
}

func TestUserErrorError(t *testing.T) {
	t.Run("without_field", func(t *testing.T) {
		err := NewUserError("invalid input", "")
		assert.Equal(t, "invalid input", err.Error())
	})

	t.Run("with_field", func(t *testing.T) {
		err := NewUserErrorWithField("platform", "??", "invalid platform", "")
		assert.Equal(t, "invalid platform: '??'", err.Error())
	})
}

func TestIsUserError(t *testing.T) {
	t.Run("wrapped_user_error", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", NewUserError("test", ""))
		assert.True(t, IsUserError(wrapped))
	})

	t.Run("not_user_error", func(t *testing.T) {
		assert.False(t, IsUserError(errors.New("plain error")))
	})

	t.Run("nil_error", func(t *testing.T) {
		assert.False(t, IsUserError(nil))
	})
}

// =============================================================================
// ValidationError Tests
// =============================================================================

func TestValidationError(t *testing.T) {
	t.Run("single_field", func(t *testing.T) {
		err := NewValidationError("amount", "-1", "must be greater than or equal to 0")
		assert.Equal(t, "amount", err.Field())
		assert.Contains(t, err.Error(), "amount: must be greater than or equal to 0")
	})

	t.Run("multiple_fields", func(t *testing.T) {
		err := &ValidationError{Violations: []FieldViolation{
			{Field: "title", Message: "is required"},
			{Field: "ctr", Message: "must be 100 or less"},
		}}
		assert.Equal(t, "validation failed: title: is required; ctr: must be 100 or less", err.Error())
	})

	t.Run("empty", func(t *testing.T) {
		err := &ValidationError{}
		assert.Equal(t, "validation failed", err.Error())
		assert.Equal(t, "", err.Field())
	})

	t.Run("wrapped_is_detected", func(t *testing.T) {
		err := Wrap(NewValidationError("date", "x", "invalid"), "add revenue")
		assert.True(t, IsValidationError(err))
		ve, ok := AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "date", ve.Field())
	})
}

// =============================================================================
// StorageError Tests
// =============================================================================

func TestStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("save", "musicbiz_revenue", cause)

	assert.Equal(t, `storage save "musicbiz_revenue": disk full`, err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, IsStorageError(fmt.Errorf("outer: %w", err)))

	noKey := NewStorageError("restore", "", cause)
	assert.Equal(t, "storage restore: disk full", noKey.Error())
}

// =============================================================================
// NotFoundError Tests
// =============================================================================

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("revenue entry", "abc")

	assert.Equal(t, `revenue entry "abc" not found`, err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, ErrRevenueNotFound))
	assert.False(t, errors.Is(err, ErrVideoNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, "revenue entry not found", ErrRevenueNotFound.Error())
}

// =============================================================================
// RenderError Tests
// =============================================================================

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError("analytics", cause)

	assert.Equal(t, "render analytics: boom", err.Error())
	assert.True(t, IsRenderError(err))
	assert.True(t, errors.Is(err, cause))
}

// =============================================================================
// Classify Tests
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"validation", NewValidationError("a", "", "b"), CategoryValidation},
		{"not_found", NewNotFoundError("video", "x"), CategoryNotFound},
		{"storage", NewStorageError("save", "k", errors.New("x")), CategoryStorage},
		{"render", NewRenderError("s", errors.New("x")), CategoryRender},
		{"user", NewUserError("x", ""), CategoryUser},
		{"system", NewSystemError("x", nil), CategorySystem},
		{"plain", errors.New("x"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "validation", CategoryValidation.String())
	assert.Equal(t, "not_found", CategoryNotFound.String())
	assert.Equal(t, "unknown", Category(99).String())
}

// =============================================================================
// Suggestion Tests
// =============================================================================

func TestGetSuggestion(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, "", GetSuggestion(nil))
	})

	t.Run("not_found_kind", func(t *testing.T) {
		err := NewNotFoundError("video", "x")
		assert.Contains(t, GetSuggestion(err), "video list")
	})

	t.Run("user_error_suggestion", func(t *testing.T) {
		err := NewUserError("bad", "do this instead")
		assert.Equal(t, "do this instead", GetSuggestion(err))
	})

	t.Run("storage_category_fallback", func(t *testing.T) {
		err := NewStorageError("save", "k", errors.New("x"))
		assert.Contains(t, GetSuggestion(err), "Nothing was changed")
	})
}

func TestFormatError(t *testing.T) {
	err := Wrap(ErrInvalidDate, "revenue add")
	msg := FormatError(err)
	assert.Contains(t, msg, "revenue add: invalid date")
	assert.Contains(t, msg, "YYYY-MM-DD")
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Equal(t, "load 3: boom", Wrapf(errors.New("boom"), "load %d", 3).Error())
}
