package services

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/domain"
	"github.com/neuralblades/platinum-V1-sub000/internal/search"
	"github.com/neuralblades/platinum-V1-sub000/internal/util"
	apperrors "github.com/neuralblades/platinum-V1-sub000/pkg/errors"
)

// BlogService serves blog posts
type BlogService struct {
	db *gorm.DB
}

// NewBlogService creates a new blog service
func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{db: db}
}

const defaultRecentPosts = 3

// List handles GET /api/blog. Supports tag, search and category
// filters plus page/limit pagination. Only published posts are
// visible without an admin token.
func (s *BlogService) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := search.ParsePageParam(query, "page", 1)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	limit, err := search.ParsePageParam(query, "limit", 9)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if limit > search.MaxLimit {
		limit = search.MaxLimit
	}

	q := s.db.WithContext(r.Context()).Model(&domain.BlogPost{})

	user, _ := UserFromContext(r.Context())
	if user == nil || !user.IsAdmin() {
		q = q.Where("status = ?", domain.BlogStatusPublished)
	}
	if tag := strings.TrimSpace(query.Get("tag")); tag != "" {
		q = q.Where("tags LIKE ?", "%"+strings.ToLower(tag)+"%")
	}
	if category := strings.TrimSpace(query.Get("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	if term := strings.TrimSpace(query.Get("search")); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	posts := []domain.BlogPost{}
	err = q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}
	s.attachAuthors(r, posts)

	WriteJSON(w, http.StatusOK, Envelope{
		"success":    true,
		"data":       posts,
		"pagination": search.NewPagination(page, limit, total),
	})
}

// Recent handles GET /api/blog/recent?limit=N
func (s *BlogService) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := search.ParsePageParam(r.URL.Query(), "limit", defaultRecentPosts)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if limit > search.MaxLimit {
		limit = search.MaxLimit
	}

	var posts []domain.BlogPost
	err = s.db.WithContext(r.Context()).
		Where("status = ?", domain.BlogStatusPublished).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}
	s.attachAuthors(r, posts)

	WriteJSON(w, http.StatusOK, Envelope{
		"success": true,
		"data":    posts,
		"count":   len(posts),
	})
}

// attachAuthors resolves the author relation for a page of posts with
// a single users query. A failed lookup leaves the field empty rather
// than failing the read.
func (s *BlogService) attachAuthors(r *http.Request, posts []domain.BlogPost) {
	seen := make(map[uint]bool)
	var ids []uint
	for i := range posts {
		if id := posts[i].AuthorID; id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	if len(ids) == 0 {
		return
	}

	var users []domain.User
	if err := s.db.WithContext(r.Context()).Where("id IN ?", ids).Find(&users).Error; err != nil {
		log.Printf("[BLOG] Failed to load authors: %v", err)
		return
	}
	byID := make(map[uint]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range posts {
		if posts[i].AuthorID != nil {
			posts[i].Author = byID[*posts[i].AuthorID]
		}
	}
}

// Tags handles GET /api/blog/tags, returning the distinct set of tags
// across published posts.
func (s *BlogService) Tags(w http.ResponseWriter, r *http.Request) {
	var posts []domain.BlogPost
	err := s.db.WithContext(r.Context()).
		Select("tags").
		Where("status = ?", domain.BlogStatusPublished).
		Find(&posts).Error
	if err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	seen := make(map[string]bool)
	var tags []string
	for _, post := range posts {
		for _, tag := range post.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	if tags == nil {
		tags = []string{}
	}

	WriteData(w, http.StatusOK, tags)
}

// Get handles GET /api/blog/{slug}. All-digit values are treated as a
// post id so id-based links resolve too.
func (s *BlogService) Get(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "slug")

	q := s.db.WithContext(r.Context())
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", ref)
	}

	var post domain.BlogPost
	if err := q.First(&post).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	user, _ := UserFromContext(r.Context())
	if post.Status != domain.BlogStatusPublished && (user == nil || !user.IsAdmin()) {
		WriteError(w, r, apperrors.NotFound("blog post not found"))
		return
	}

	if post.AuthorID != nil {
		var author domain.User
		if err := s.db.WithContext(r.Context()).First(&author, *post.AuthorID).Error; err == nil {
			post.Author = &author
		}
	}

	WriteData(w, http.StatusOK, post)
}

type blogPayload struct {
	Title    *string            `json:"title"`
	Content  *string            `json:"content"`
	Excerpt  *string            `json:"excerpt"`
	Image    *string            `json:"image"`
	Category *string            `json:"category"`
	Tags     *domain.StringList `json:"tags"`
	Status   *string            `json:"status"`
}

// Create handles POST /api/blog (admin)
func (s *BlogService) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, r, apperrors.Unauthorized("authentication required"))
		return
	}

	var payload blogPayload
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	var missing []string
	if payload.Title == nil || strings.TrimSpace(*payload.Title) == "" {
		missing = append(missing, "title")
	}
	if payload.Content == nil || strings.TrimSpace(*payload.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		WriteError(w, r, apperrors.Validation("missing required fields: "+strings.Join(missing, ", ")))
		return
	}

	authorID := user.ID
	post := domain.BlogPost{
		Title:    strings.TrimSpace(*payload.Title),
		Slug:     util.Slugify(*payload.Title),
		Content:  *payload.Content,
		AuthorID: &authorID,
		Status:   domain.BlogStatusDraft,
	}
	applyBlogPayload(&post, &payload)

	if err := s.db.WithContext(r.Context()).Create(&post).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	WriteData(w, http.StatusCreated, post)
}

// Update handles PUT /api/blog/{id} (admin)
func (s *BlogService) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var post domain.BlogPost
	if err := s.db.WithContext(r.Context()).First(&post, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	var payload blogPayload
	if err := DecodeBody(r, &payload); err != nil {
		WriteError(w, r, err)
		return
	}

	if payload.Title != nil {
		title := strings.TrimSpace(*payload.Title)
		if title == "" {
			WriteError(w, r, apperrors.Validation("title cannot be empty"))
			return
		}
		post.Title = title
		post.Slug = util.Slugify(title)
	}
	if payload.Content != nil {
		post.Content = *payload.Content
	}
	applyBlogPayload(&post, &payload)

	if err := s.db.WithContext(r.Context()).Save(&post).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	WriteData(w, http.StatusOK, post)
}

// Delete handles DELETE /api/blog/{id} (admin)
func (s *BlogService) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var post domain.BlogPost
	if err := s.db.WithContext(r.Context()).First(&post, id).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}
	if err := s.db.WithContext(r.Context()).Delete(&post).Error; err != nil {
		WriteError(w, r, apperrors.FromDB(err, "blog post"))
		return
	}

	WriteMessage(w, http.StatusOK, "Blog post deleted")
}

func applyBlogPayload(post *domain.BlogPost, payload *blogPayload) {
	if payload.Excerpt != nil {
		post.Excerpt = *payload.Excerpt
	}
	if payload.Image != nil {
		post.Image = *payload.Image
	}
	if payload.Category != nil {
		post.Category = *payload.Category
	}
	if payload.Tags != nil {
		post.Tags = *payload.Tags
	}
	if payload.Status != nil {
		switch *payload.Status {
		case domain.BlogStatusDraft, domain.BlogStatusPublished:
			post.Status = *payload.Status
		}
	}
}
