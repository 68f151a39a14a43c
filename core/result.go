package core

// Result is the outcome of answering a question against a corpus.
// It is one of Answer, NoAnswer or Failure; callers handle it with a type switch:
//
//	switch r := result.(type) {
//	case core.Answer:
//	    render(r.Text)
//	case core.NoAnswer:
//	    render(fallbackMessage)
//	case core.Failure:
//	    report(r.Message())
//	}
type Result interface {
	isResult()
}

// Answer carries the text selected from the corpus.
// Text is either a single passage or several passages joined by one space.
// Indices lists the corpus positions used, ascending.
type Answer struct {
	Text    string
	Indices []int
}

// NoAnswer means no passage cleared the bar. It is a valid outcome, not an error.
type NoAnswer struct{}

// Failure wraps an error raised while answering.
type Failure struct {
	Err error
}

func (Answer) isResult()   {}
func (NoAnswer) isResult() {}
func (Failure) isResult()  {}

// Message returns the human readable failure message.
func (f Failure) Message() string {
	if f.Err == nil {
		return "unknown error"
	}
	return f.Err.Error()
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (f Failure) Unwrap() error {
	return f.Err
}
