package session

import (
	"sync"
	"time"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"
)

// Level is the display level of a notification
type Level string

// Notification levels
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient message for the user
type Notification struct {
	Level   Level                  `json:"level"`
	Code    contextutils.ErrorCode `json:"code,omitempty"`
	Message string                 `json:"message"`
	At      time.Time              `json:"at"`
}

// Success messages
const (
	MessageTranslated = "Your text has been translated successfully."
	MessageRecognized = "Speech recognized."
)

// notifier is a bounded FIFO of notifications; the oldest entry is dropped when full
type notifier struct {
	mu     sync.Mutex
	items  []Notification
	max    int
	locale contextutils.Locale
	now    func() time.Time
}

func newNotifier(max int, locale string) *notifier {
	if max <= 0 {
		max = 1
	}
	return &notifier{max: max, locale: contextutils.ParseLocale(locale), now: time.Now}
}

func (n *notifier) post(level Level, code contextutils.ErrorCode, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.items) >= n.max {
		n.items = n.items[1:]
	}
	n.items = append(n.items, Notification{Level: level, Code: code, Message: message, At: n.now()})
}

// postError posts the localized message for err at a level derived from its severity
func (n *notifier) postError(err error) {
	level := LevelError
	switch contextutils.GetErrorSeverity(err) {
	case contextutils.SeverityInfo:
		level = LevelInfo
	case contextutils.SeverityWarn:
		level = LevelWarning
	}
	n.post(level, contextutils.GetErrorCode(err), contextutils.GetErrorLocalizedMessage(err, string(n.locale)))
}

func (n *notifier) drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	items := n.items
	n.items = nil
	return items
}

func (n *notifier) pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}
