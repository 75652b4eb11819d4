package enums

// ConfirmationOutcome is the recorded result of a supplier confirmation task.
type ConfirmationOutcome string

const (
	ConfirmationOutcomeQueued    ConfirmationOutcome = "queued"
	ConfirmationOutcomeSucceeded ConfirmationOutcome = "succeeded"
	ConfirmationOutcomeFailed    ConfirmationOutcome = "failed"
	ConfirmationOutcomeCanceled  ConfirmationOutcome = "canceled"
)

var validConfirmationOutcomes = []ConfirmationOutcome{
	ConfirmationOutcomeQueued,
	ConfirmationOutcomeSucceeded,
	ConfirmationOutcomeFailed,
	ConfirmationOutcomeCanceled,
}

// String implements fmt.Stringer.
func (o ConfirmationOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known ConfirmationOutcome.
func (o ConfirmationOutcome) IsValid() bool {
	for _, candidate := range validConfirmationOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsFinal reports whether the task has finished.
func (o ConfirmationOutcome) IsFinal() bool {
	return o != ConfirmationOutcomeQueued && o.IsValid()
}
