package admin

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrChatNotFound means no chat session has the given id.
	ErrChatNotFound = errors.New("chat session not found")
	// ErrEmptyReply rejects a blank administrator reply.
	ErrEmptyReply = errors.New("reply must not be empty")
)

// ChatStatus is the triage state of a concierge chat.
type ChatStatus string

const (
	ChatUrgent   ChatStatus = "urgent"
	ChatActive   ChatStatus = "active"
	ChatResolved ChatStatus = "resolved"
)

// Author tags who wrote a chat message.
type Author string

const (
	AuthorUser  Author = "user"
	AuthorAI    Author = "ai"
	AuthorAdmin Author = "admin"
)

// ChatMessage is one line of a chat transcript.
type ChatMessage struct {
	Role   Author    `json:"role"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// ChatSession is one member conversation shown in the inbox.
type ChatSession struct {
	ID         string        `json:"id"`
	User       string        `json:"user"`
	Phone      string        `json:"phone"`
	LastMsg    string        `json:"lastMsg"`
	LastActive time.Time     `json:"lastActive"`
	Unread     bool          `json:"unread"`
	Status     ChatStatus    `json:"status"`
	History    []ChatMessage `json:"history,omitempty"`
}

// Inbox holds the chat sessions the concierge desk monitors.
type Inbox struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession
	now      func() time.Time
}

// NewSampleInbox seeds the inbox with the desk's sample conversations,
// timestamped relative to now.
func NewSampleInbox(now func() time.Time) *Inbox {
	if now == nil {
		now = time.Now
	}
	t := now()
	ago := func(d time.Duration) time.Time { return t.Add(-d) }

	sarah := []ChatMessage{
		{Role: AuthorUser, Text: "Hello, I'm looking for a heart specialist in Bangkok.", SentAt: ago(15 * time.Minute)},
		{Role: AuthorAI, Text: "Welcome Sarah! Asia Medicare works with top cardiologists at Bumrungrad and Samitivej. Would you like to see a list of specialists or book a direct consultation?", SentAt: ago(14 * time.Minute)},
		{Role: AuthorUser, Text: "I specifically need someone who deals with arrhythmia. I'm coming from Dubai next week.", SentAt: ago(10 * time.Minute)},
		{Role: AuthorAdmin, Text: "Hello Sarah, this is the Concierge Manager. I've personally notified Dr. Somchai's team of your Dubai arrival. I can arrange an airport fast-track for you as well.", SentAt: ago(2 * time.Minute)},
	}
	seed := []ChatSession{
		{ID: "1", User: "Sarah Ahmed", Phone: "+971 50 123 4567", LastMsg: "I need a specialized cardiologist...", LastActive: ago(2 * time.Minute), Unread: true, Status: ChatUrgent, History: sarah},
		{ID: "2", User: "Li Wei", Phone: "+86 138 9876 5432", LastMsg: "When is my limo arriving?", LastActive: ago(15 * time.Minute), Status: ChatActive,
			History: []ChatMessage{{Role: AuthorUser, Text: "When is my limo arriving?", SentAt: ago(15 * time.Minute)}}},
		{ID: "3", User: "Mohammed Ali", Phone: "+966 50 555 1234", LastMsg: "Thank you for the help.", LastActive: ago(time.Hour), Status: ChatResolved,
			History: []ChatMessage{{Role: AuthorUser, Text: "Thank you for the help.", SentAt: ago(time.Hour)}}},
		{ID: "4", User: "John Smith", Phone: "+1 212 555 0198", LastMsg: "How do I earn more points?", LastActive: ago(3 * time.Hour), Status: ChatActive,
			History: []ChatMessage{{Role: AuthorUser, Text: "How do I earn more points?", SentAt: ago(3 * time.Hour)}}},
	}

	in := &Inbox{sessions: make(map[string]*ChatSession, len(seed)), now: now}
	for i := range seed {
		s := seed[i]
		in.sessions[s.ID] = &s
	}
	return in
}

// List returns sessions whose name contains query (case-insensitive) or whose
// phone contains it, most recently active first. Transcripts are omitted.
func (in *Inbox) List(query string) []ChatSession {
	q := strings.TrimSpace(query)
	lower := strings.ToLower(q)

	in.mu.RLock()
	out := make([]ChatSession, 0, len(in.sessions))
	for _, s := range in.sessions {
		if q != "" && !strings.Contains(strings.ToLower(s.User), lower) && !strings.Contains(s.Phone, q) {
			continue
		}
		summary := *s
		summary.History = nil
		out = append(out, summary)
	}
	in.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out
}

// Get returns one session with its transcript and marks it read.
func (in *Inbox) Get(id string) (ChatSession, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	s, ok := in.sessions[id]
	if !ok {
		return ChatSession{}, ErrChatNotFound
	}
	s.Unread = false
	return s.clone(), nil
}

// Reply appends an administrator message. Replying reopens a resolved chat.
func (in *Inbox) Reply(id, text string) (ChatSession, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatSession{}, ErrEmptyReply
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	s, ok := in.sessions[id]
	if !ok {
		return ChatSession{}, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	at := in.now()
	s.History = append(s.History, ChatMessage{Role: AuthorAdmin, Text: text, SentAt: at})
	s.LastMsg = text
	s.LastActive = at
	s.Unread = false
	if s.Status == ChatResolved {
		s.Status = ChatActive
	}
	return s.clone(), nil
}

// Resolve closes a chat.
func (in *Inbox) Resolve(id string) (ChatSession, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	s, ok := in.sessions[id]
	if !ok {
		return ChatSession{}, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	s.Status = ChatResolved
	s.Unread = false
	return s.clone(), nil
}

// Counts returns the total and unresolved number of sessions.
func (in *Inbox) Counts() (total, open int) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	for _, s := range in.sessions {
		if s.Status != ChatResolved {
			open++
		}
	}
	return len(in.sessions), open
}

func (s *ChatSession) clone() ChatSession {
	out := *s
	out.History = append([]ChatMessage(nil), s.History...)
	return out
}
