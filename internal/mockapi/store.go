package mockapi

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

type account struct {
	user     market.User
	password string
}

type conversation struct {
	id           string
	productID    string
	participants [2]string
	updated      time.Time
}

func (c *conversation) includes(userID string) bool {
	return c.participants[0] == userID || c.participants[1] == userID
}

func (c *conversation) other(userID string) string {
	if c.participants[0] == userID {
		return c.participants[1]
	}
	return c.participants[0]
}

// data is the in-memory marketplace. Callers hold Server.mu.
type data struct {
	users         map[string]*account
	byEmail       map[string]string
	tokens        map[string]string
	products      map[string]*market.Product
	productOrder  []string
	favorites     map[string]map[string]bool
	follows       map[string]map[string]bool
	conversations map[string]*conversation
	messages      map[string][]*market.Message
	now           func() time.Time
}

func newData() *data {
	return &data{
		users:         make(map[string]*account),
		byEmail:       make(map[string]string),
		tokens:        make(map[string]string),
		products:      make(map[string]*market.Product),
		favorites:     make(map[string]map[string]bool),
		follows:       make(map[string]map[string]bool),
		conversations: make(map[string]*conversation),
		messages:      make(map[string][]*market.Message),
		now:           time.Now,
	}
}

func (d *data) timestamp() string {
	return d.now().UTC().Format(time.RFC3339Nano)
}

func (d *data) addUser(username, email, password string) *account {
	acc := &account{
		user: market.User{
			UserSummary: market.UserSummary{
				ID:       uuid.NewString(),
				Username: username,
				Email:    strings.ToLower(email),
			},
			CreatedAt: d.timestamp(),
		},
		password: password,
	}
	d.users[acc.user.ID] = acc
	d.byEmail[acc.user.Email] = acc.user.ID
	return acc
}

func (d *data) issueToken(userID string) string {
	token := uuid.NewString()
	d.tokens[token] = userID
	return token
}

func (d *data) summary(userID string) market.UserSummary {
	if acc, ok := d.users[userID]; ok {
		return acc.user.UserSummary
	}
	return market.UserSummary{ID: userID}
}

func (d *data) profile(userID, viewer string) market.User {
	acc := d.users[userID]
	u := acc.user
	u.FollowerCount = 0
	for _, followees := range d.follows {
		if followees[userID] {
			u.FollowerCount++
		}
	}
	u.FollowingCount = len(d.follows[userID])
	u.IsFollowing = d.follows[viewer][userID]
	return u
}

func (d *data) addProduct(sellerID string, in market.ProductInput) *market.Product {
	images := in.Images
	if images == nil {
		images = []string{}
	}
	p := &market.Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Images:      append([]string(nil), images...),
		Category:    in.Category,
		Condition:   in.Condition,
		Brand:       in.Brand,
		Size:        in.Size,
		Status:      "active",
		Seller:      d.summary(sellerID),
		CreatedAt:   d.timestamp(),
	}
	d.products[p.ID] = p
	d.productOrder = append([]string{p.ID}, d.productOrder...)
	return p
}

func (d *data) removeProduct(id string) {
	delete(d.products, id)
	for i, pid := range d.productOrder {
		if pid == id {
			d.productOrder = append(d.productOrder[:i], d.productOrder[i+1:]...)
			break
		}
	}
	for _, favs := range d.favorites {
		delete(favs, id)
	}
}

// productView returns a copy of p as seen by viewer.
func (d *data) productView(p *market.Product, viewer string) market.Product {
	out := *p
	out.Images = append([]string{}, p.Images...)
	out.Seller = d.summary(p.Seller.ID)
	out.IsFavorite = d.favorites[viewer][p.ID]
	return out
}

func (d *data) setFavorite(userID, productID string, favorite bool) {
	favs := d.favorites[userID]
	if favs == nil {
		favs = make(map[string]bool)
		d.favorites[userID] = favs
	}
	if favorite {
		favs[productID] = true
	} else {
		delete(favs, productID)
	}
}

func (d *data) findConversation(a, b, productID string) *conversation {
	for _, c := range d.conversations {
		if c.productID == productID && c.includes(a) && c.includes(b) {
			return c
		}
	}
	return nil
}

func (d *data) appendMessage(c *conversation, senderID, content string, images []string) *market.Message {
	if images == nil {
		images = []string{}
	}
	m := &market.Message{
		ID:             uuid.NewString(),
		ConversationID: c.id,
		SenderID:       senderID,
		Content:        content,
		Images:         append([]string{}, images...),
		Timestamp:      d.timestamp(),
	}
	d.messages[c.id] = append(d.messages[c.id], m)
	c.updated = d.now()
	return m
}

// conversationView returns c as seen by viewer.
func (d *data) conversationView(c *conversation, viewer string) market.Conversation {
	out := market.Conversation{
		ID:   c.id,
		User: d.summary(c.other(viewer)),
	}
	if p, ok := d.products[c.productID]; ok {
		out.Product = market.ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price}
		if len(p.Images) > 0 {
			out.Product.Image = p.Images[0]
		}
	} else {
		out.Product = market.ProductSummary{ID: c.productID}
	}
	msgs := d.messages[c.id]
	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		out.LastMessage = market.MessageSummary{
			Content:   last.Content,
			SenderID:  last.SenderID,
			Timestamp: last.Timestamp,
			IsRead:    last.IsRead,
		}
	}
	for _, m := range msgs {
		if !m.IsRead && m.SenderID != viewer {
			out.UnreadCount++
		}
	}
	return out
}

// inbox lists viewer's conversations, most recently active first.
func (d *data) inbox(viewer string) []market.Conversation {
	var convs []*conversation
	for _, c := range d.conversations {
		if c.includes(viewer) {
			convs = append(convs, c)
		}
	}
	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].updated.Equal(convs[j].updated) {
			return convs[i].id < convs[j].id
		}
		return convs[i].updated.After(convs[j].updated)
	})
	out := make([]market.Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, d.conversationView(c, viewer))
	}
	return out
}

func (d *data) findMessage(id string) (*market.Message, *conversation) {
	for cid, msgs := range d.messages {
		for _, m := range msgs {
			if m.ID == id {
				return m, d.conversations[cid]
			}
		}
	}
	return nil, nil
}

func (d *data) newConversation(a, b, productID string) *conversation {
	c := &conversation{
		id:           uuid.NewString(),
		productID:    productID,
		participants: [2]string{a, b},
		updated:      d.now(),
	}
	d.conversations[c.id] = c
	return c
}
