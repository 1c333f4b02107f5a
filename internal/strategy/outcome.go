package strategy

import "fmt"

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFail
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFail:
		return "fail"
	case OutcomeError:
		return "error"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the terminal result of an authentication attempt. User is set only for
// OutcomeSuccess; Err is set only for OutcomeError; Info may accompany either success
// or failure.
type Outcome struct {
	Kind OutcomeKind
	User interface{}
	Info interface{}
	Err  error
}

func NewSuccess(user, info interface{}) *Outcome {
	return &Outcome{Kind: OutcomeSuccess, User: user, Info: info}
}

func NewFail(info interface{}) *Outcome {
	return &Outcome{Kind: OutcomeFail, Info: info}
}

func NewError(err error) *Outcome {
	return &Outcome{Kind: OutcomeError, Err: err}
}

// Result is what a single call to Authenticate produces: either Redirect is the URL
// to which the user agent should be sent, or Outcome is non-nil. Never both.
type Result struct {
	Redirect string
	Outcome  *Outcome
}

// IsRedirect returns true if the attempt is suspended pending a redirect to the
// authorization server
func (r Result) IsRedirect() bool {
	return r.Outcome == nil
}
