package event

type Type string

const (
	TypeIdentityRegistered Type = "identity.registered"
	TypeLoginSucceeded     Type = "login.succeeded"
	TypeLoginFailed        Type = "login.failed"
)

// AuthPayload describes the identity an auth event concerns. Reason is the
// internal failure code and is never sent to clients.
type AuthPayload struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	IP     string `json:"ip,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   AuthPayload `json:"payload"`
	Timestamp string      `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // channel and unsubscribe function
}
