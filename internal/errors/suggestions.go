package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrRevenueNotFound:   "Use 'creatorbook revenue list' to see entry ids.",
	ErrVideoNotFound:     "Use 'creatorbook video list' to see video ids.",
	ErrScheduleNotFound:  "Use 'creatorbook schedule list' to see scheduled reports.",
	ErrEventNotFound:     "Use 'creatorbook calendar list' to see events.",
	ErrInvalidDate:       "Use YYYY-MM-DD or phrases like 'today' or 'yesterday'.",
	ErrInvalidAmount:     "Amounts must be non-negative numbers like 12.50.",
	ErrInvalidPeriod:     "Use current_month, last_month, current_quarter, last_quarter, current_year, last_year or custom.",
	ErrInvalidReportType: "Use commercialista, performance or executive.",
	ErrInvalidFormat:     "Use csv, json, html or pdf.",
	ErrInvalidFrequency:  "Use daily, weekly, monthly, quarterly or annual.",
	ErrInvalidBackup:     "Restore only files created with 'creatorbook backup create'.",
	ErrDatabaseCorrupted: "Restore the latest backup with 'creatorbook backup restore FILE'.",
	ErrMailDisabled:      "Set mail.sendgrid_api_key in the config file or CREATORBOOK_MAIL_SENDGRID_API_KEY.",
	ErrConfirmRequired:   "Pass --yes to confirm when not running in a terminal.",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	return GetCategorySuggestion(err)
}

// GetCategorySuggestion returns a generic suggestion based on error category.
func GetCategorySuggestion(err error) string {
	switch Classify(err) {
	case CategoryValidation:
		return "Check your input and try again. Use --help for usage information."
	case CategoryStorage:
		return "Nothing was changed. Check the data directory permissions and free space."
	default:
		return ""
	}
}

// FormatError formats an error with optional suggestion.
func FormatError(err error) string {
	msg := err.Error()
	if suggestion := GetSuggestion(err); suggestion != "" {
		msg += "\n" + suggestion
	}
	return msg
}
