package chat

// DefaultHistoryLimit is how many recent messages the hub retains when no
// explicit limit is configured.
const DefaultHistoryLimit = 100

// Message is one broadcast chat message. Messages are immutable once
// created; the author fields are a snapshot of the sender's identity at
// send time.
type Message struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	ReplyTo   string `json:"reply_to,omitempty"`
}

// History is a bounded, append-only buffer of recent broadcast messages,
// used to replay history to newly joined clients. Once the limit is reached
// the oldest entries are evicted first.
//
// History is not safe for concurrent use; the hub's event loop is its only
// caller.
type History struct {
	limit    int
	messages []Message
}

// NewHistory creates a history buffer holding at most limit messages.
// A non-positive limit selects DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append adds msg at the tail, evicting from the head when the buffer would
// exceed its limit.
func (h *History) Append(msg Message) {
	h.messages = append(h.messages, msg)
	if excess := len(h.messages) - h.limit; excess > 0 {
		h.messages = append([]Message(nil), h.messages[excess:]...)
	}
}

// Recent returns the last k messages in chronological order, oldest first.
// When fewer than k messages are held it returns all of them. The result is
// never nil so it marshals as a JSON array.
func (h *History) Recent(k int) []Message {
	if k > len(h.messages) {
		k = len(h.messages)
	}
	if k <= 0 {
		return []Message{}
	}
	return append([]Message(nil), h.messages[len(h.messages)-k:]...)
}

// Len reports the number of retained messages.
func (h *History) Len() int {
	return len(h.messages)
}
