package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, found := s.data.byEmail[strings.ToLower(strings.TrimSpace(in.Email))]
	if !found || s.data.users[id].password != in.Password {
		unauthorized(w, "Invalid email or password")
		return
	}
	ok(w, market.AuthResponse{Token: s.data.issueToken(id), User: s.data.summary(id)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || len(in.Password) < 6 {
		badRequest(w, "Username, email and a password of at least 6 characters are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.byEmail[in.Email]; exists {
		badRequest(w, "Email already registered")
		return
	}
	acc := s.data.addUser(in.Username, in.Email, in.Password)
	created(w, market.AuthResponse{Token: s.data.issueToken(acc.user.ID), User: acc.user.UserSummary})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Email) == "" {
		badRequest(w, "Email is required")
		return
	}
	ok(w, map[string]string{"message": "If the address exists, a reset link has been sent"})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.users[id]; !exists {
		notFound(w, "User not found")
		return
	}
	ok(w, s.data.profile(id, viewer(r)))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != viewer(r) {
		forbidden(w, "You can only edit your own profile")
		return
	}
	var in market.ProfileInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, exists := s.data.users[id]
	if !exists {
		notFound(w, "User not found")
		return
	}
	if in.Username != "" {
		acc.user.Username = in.Username
	}
	if in.Bio != "" {
		acc.user.Bio = in.Bio
	}
	if in.Location != "" {
		acc.user.Location = in.Location
	}
	if in.Avatar != "" {
		acc.user.Avatar = in.Avatar
	}
	ok(w, s.data.profile(id, id))
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	s.setFollow(w, r, true)
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	s.setFollow(w, r, false)
}

func (s *Server) setFollow(w http.ResponseWriter, r *http.Request, following bool) {
	target, me := chi.URLParam(r, "id"), viewer(r)
	if target == me {
		badRequest(w, "You cannot follow yourself")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.users[target]; !exists {
		notFound(w, "User not found")
		return
	}
	set := s.data.follows[me]
	if set == nil {
		set = make(map[string]bool)
		s.data.follows[me] = set
	}
	if following {
		set[target] = true
	} else {
		delete(set, target)
	}
	ok(w, map[string]bool{"isFollowing": following})
}

func (s *Server) followers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []market.UserSummary{}
	for follower, set := range s.data.follows {
		if set[id] {
			out = append(out, s.data.summary(follower))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	ok(w, out)
}

func (s *Server) following(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []market.UserSummary{}
	for followee := range s.data.follows[id] {
		out = append(out, s.data.summary(followee))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	ok(w, out)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	minPrice, _ := strconv.ParseFloat(q.Get("minPrice"), 64)
	maxPrice, _ := strconv.ParseFloat(q.Get("maxPrice"), 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	me := viewer(r)
	out := []market.Product{}
	for _, id := range s.data.productOrder {
		p := s.data.products[id]
		if search != "" && !matches(p, search) {
			continue
		}
		if c := q.Get("category"); c != "" && !strings.EqualFold(p.Category, c) {
			continue
		}
		if c := q.Get("condition"); c != "" && !strings.EqualFold(p.Condition, c) {
			continue
		}
		if minPrice > 0 && p.Price < minPrice {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		out = append(out, s.data.productView(p, me))
	}

	switch q.Get("sort") {
	case "price_asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case "price_desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	ok(w, paginate(out, q.Get("page"), q.Get("limit")))
}

func matches(p *market.Product, term string) bool {
	for _, field := range []string{p.Title, p.Description, p.Brand} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, pageParam, limitParam string) []T {
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit <= 0 {
		return items
	}
	page, err := strconv.Atoi(pageParam)
	if err != nil || page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data.products[id]
	if !exists {
		notFound(w, "Product not found")
		return
	}
	ok(w, s.data.productView(p, viewer(r)))
}

func (s *Server) userProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []market.Product{}
	for _, pid := range s.data.productOrder {
		p := s.data.products[pid]
		if p.Seller.ID != id || (status != "" && p.Status != status) {
			continue
		}
		out = append(out, s.data.productView(p, viewer(r)))
	}
	ok(w, out)
}

func validProduct(in market.ProductInput) bool {
	return strings.TrimSpace(in.Title) != "" && in.Price > 0
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in market.ProductInput
	if err := decode(r, &in); err != nil || !validProduct(in) {
		badRequest(w, "Title and a positive price are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.addProduct(viewer(r), in)
	created(w, s.data.productView(p, viewer(r)))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in market.ProductInput
	if err := decode(r, &in); err != nil || !validProduct(in) {
		badRequest(w, "Title and a positive price are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data.products[id]
	if !exists {
		notFound(w, "Product not found")
		return
	}
	if p.Seller.ID != viewer(r) {
		forbidden(w, "You can only edit your own listings")
		return
	}
	p.Title, p.Description, p.Price = in.Title, in.Description, in.Price
	p.Category, p.Condition, p.Brand, p.Size = in.Category, in.Condition, in.Brand, in.Size
	if in.Images != nil {
		p.Images = append([]string{}, in.Images...)
	}
	ok(w, s.data.productView(p, viewer(r)))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data.products[id]
	if !exists {
		notFound(w, "Product not found")
		return
	}
	if p.Seller.ID != viewer(r) {
		forbidden(w, "You can only delete your own listings")
		return
	}
	s.data.removeProduct(id)
	ok(w, map[string]string{"message": "Product deleted"})
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	s.setFavorite(w, r, true)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	s.setFavorite(w, r, false)
}

func (s *Server) setFavorite(w http.ResponseWriter, r *http.Request, favorite bool) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.products[id]; !exists {
		notFound(w, "Product not found")
		return
	}
	s.data.setFavorite(viewer(r), id, favorite)
	ok(w, map[string]bool{"isFavorite": favorite})
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	me := viewer(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []market.Product{}
	for _, id := range s.data.productOrder {
		if s.data.favorites[me][id] {
			out = append(out, s.data.productView(s.data.products[id], me))
		}
	}
	ok(w, out)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(w, s.data.inbox(viewer(r)))
}

func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	var in market.NewConversation
	if err := decode(r, &in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	me := viewer(r)
	content := strings.TrimSpace(in.InitialMessage)
	if in.ReceiverID == "" || in.ProductID == "" || content == "" {
		badRequest(w, "receiverId, productId and initialMessage are required")
		return
	}
	if in.ReceiverID == me {
		badRequest(w, "You cannot message yourself")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data.users[in.ReceiverID]; !exists {
		notFound(w, "User not found")
		return
	}
	if _, exists := s.data.products[in.ProductID]; !exists {
		notFound(w, "Product not found")
		return
	}
	c := s.data.findConversation(me, in.ReceiverID, in.ProductID)
	if c == nil {
		c = s.data.newConversation(me, in.ReceiverID, in.ProductID)
	}
	s.data.appendMessage(c, me, content, nil)
	created(w, s.data.conversationView(c, me))
}

// conversationFor returns the conversation named in the URL when the viewer
// takes part in it, writing the error response otherwise.
func (s *Server) conversationFor(w http.ResponseWriter, r *http.Request) *conversation {
	c, exists := s.data.conversations[chi.URLParam(r, "id")]
	if !exists {
		notFound(w, "Conversation not found")
		return nil
	}
	if !c.includes(viewer(r)) {
		forbidden(w, "Not a participant of this conversation")
		return nil
	}
	return c
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.conversationFor(w, r); c != nil {
		ok(w, s.data.conversationView(c, viewer(r)))
	}
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.conversationFor(w, r)
	if c == nil {
		return
	}
	msgs := make([]market.Message, 0, len(s.data.messages[c.id]))
	for _, m := range s.data.messages[c.id] {
		msgs = append(msgs, *m)
	}
	q := r.URL.Query()
	ok(w, paginate(msgs, q.Get("page"), q.Get("limit")))
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in market.OutgoingMessage
	if err := decode(r, &in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	content := strings.TrimSpace(in.Content)
	if in.ConversationID == "" || (content == "" && len(in.Images) == 0) {
		badRequest(w, "conversationId and content are required")
		return
	}
	me := viewer(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data.conversations[in.ConversationID]
	if !exists {
		notFound(w, "Conversation not found")
		return
	}
	if !c.includes(me) {
		forbidden(w, "Not a participant of this conversation")
		return
	}
	created(w, *s.data.appendMessage(c, me, content, in.Images))
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	me := viewer(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	m, c := s.data.findMessage(id)
	if m == nil {
		notFound(w, "Message not found")
		return
	}
	if !c.includes(me) {
		forbidden(w, "Not a participant of this conversation")
		return
	}
	if m.SenderID != me {
		m.IsRead = true
	}
	ok(w, *m)
}
