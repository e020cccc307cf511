package coordinator

import "fmt"

// Kind classifies a user-facing failure.
type Kind int

const (
	EngineUnreachable Kind = iota + 1
	LanguagesUnavailable
	OcrNotReady
	OcrFailed
)

func (k Kind) String() string {
	switch k {
	case EngineUnreachable:
		return "engine_unreachable"
	case LanguagesUnavailable:
		return "languages_unavailable"
	case OcrNotReady:
		return "ocr_not_ready"
	case OcrFailed:
		return "ocr_failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Notification struct {
	Kind   Kind
	Engine string
	Err    error
}

func (n Notification) String() string {
	if n.Engine == "" {
		return fmt.Sprintf("%s: %v", n.Kind, n.Err)
	}
	return fmt.Sprintf("%s (%s): %v", n.Kind, n.Engine, n.Err)
}

// Notifier receives failures the user should see. It is called outside the
// coordinator lock and may be called from any goroutine.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
