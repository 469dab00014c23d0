package checkout

// Step is a stage of the checkout flow.
type Step int

const (
	StepDetails Step = iota
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Wizard tracks progress through checkout. Details must validate before the
// payment step is reachable.
type Wizard struct {
	Step Step
	Info CustomerInfo
}

// Advance moves from details to payment. It reports the validation failure
// and stays put when the details are incomplete.
func (w *Wizard) Advance() error {
	if w.Step != StepDetails {
		return nil
	}
	if err := ValidateDetails(w.Info); err != nil {
		return err
	}
	w.Info = w.Info.Normalize()
	w.Step = StepPayment
	return nil
}

// Back returns to the details step.
func (w *Wizard) Back() {
	w.Step = StepDetails
}
