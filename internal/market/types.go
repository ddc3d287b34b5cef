package market

import (
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// UserSummary is the embedded user shape used across listings and messages.
type UserSummary struct {
	ID       string  `json:"id" toml:"id"`
	Username string  `json:"username" toml:"username"`
	Email    string  `json:"email,omitempty" toml:"email"`
	Avatar   string  `json:"avatar,omitempty" toml:"avatar"`
	Rating   float64 `json:"rating,omitempty" toml:"rating"`
}

// User is the full profile returned by /users/{id}.
type User struct {
	UserSummary
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	FollowerCount  int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// AuthResponse mirrors the login and register payloads.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// Product is a marketplace listing. IsFavorite is the only field the client
// mutates locally.
type Product struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Images      []string    `json:"images"`
	Category    string      `json:"category,omitempty"`
	Condition   string      `json:"condition,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Size        string      `json:"size,omitempty"`
	Status      string      `json:"status,omitempty"`
	IsFavorite  bool        `json:"isFavorite"`
	Seller      UserSummary `json:"seller"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (p Product) ParsedCreatedAt() time.Time {
	return parseTime(p.CreatedAt)
}

// ProductSummary is the product shape embedded in conversations.
type ProductSummary struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// ProductInput is the payload for creating or updating a listing.
type ProductInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Brand       string   `json:"brand,omitempty"`
	Size        string   `json:"size,omitempty"`
}

// ProfileInput is the payload for profile updates.
type ProfileInput struct {
	Username string `json:"username,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// MessageSummary is the last-message preview embedded in conversations.
type MessageSummary struct {
	Content   string `json:"content"`
	SenderID  string `json:"senderId"`
	Timestamp string `json:"timestamp"`
	IsRead    bool   `json:"isRead"`
}

// Conversation is one entry of the inbox. Order is server-determined.
type Conversation struct {
	ID          string         `json:"id"`
	User        UserSummary    `json:"user"`
	Product     ProductSummary `json:"product"`
	LastMessage MessageSummary `json:"lastMessage"`
	UnreadCount int            `json:"unreadCount"`
}

// Message belongs to exactly one conversation.
type Message struct {
	ID             string   `json:"id"`
	ConversationID string   `json:"conversationId"`
	SenderID       string   `json:"senderId"`
	Content        string   `json:"content"`
	Images         []string `json:"images,omitempty"`
	Timestamp      string   `json:"timestamp"`
	IsRead         bool     `json:"isRead"`
}

// ParsedTime returns the message timestamp as time.Time when possible.
func (m Message) ParsedTime() time.Time {
	return parseTime(m.Timestamp)
}

// NewConversation starts a thread about a product with an initial message.
type NewConversation struct {
	ReceiverID     string `json:"receiverId"`
	ProductID      string `json:"productId"`
	InitialMessage string `json:"initialMessage"`
}

// OutgoingMessage appends to an existing conversation.
type OutgoingMessage struct {
	ConversationID string   `json:"conversationId"`
	Content        string   `json:"content"`
	Images         []string `json:"images"`
}

// Page selects a window of a paginated collection.
type Page struct {
	Page  int
	Limit int
}

const (
	defaultPage      = 1
	defaultPageLimit = 50
)

func (p Page) normalized() Page {
	if p.Page <= 0 {
		p.Page = defaultPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	return p
}

// ProductQuery carries the listing filters used by the home and search screens.
type ProductQuery struct {
	Search    string
	Category  string
	Condition string
	MinPrice  float64
	MaxPrice  float64
	Sort      string
	Page      int
	Limit     int
}

// IsZero reports whether no filter is set.
func (q ProductQuery) IsZero() bool {
	return strings.TrimSpace(q.Search) == "" && q.Category == "" && q.Condition == "" &&
		q.MinPrice == 0 && q.MaxPrice == 0 && q.Sort == "" && q.Page == 0 && q.Limit == 0
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(timestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
