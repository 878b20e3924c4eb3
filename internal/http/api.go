package http

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mesto-api/internal/auth"
	"mesto-api/internal/domain"
	"mesto-api/internal/service"
	"mesto-api/internal/storage"
)

const (
	msgRouteNotFound = "not found"
	msgBadBody       = "invalid request body"

	maxPhotoSize = 10 << 20
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	cards     service.CardService
	tokens    *auth.TokenManager
	media     storage.Service
	logger    *logrus.Logger
	authRPS   float64
	authBurst int
}

// NewHandler builds the route handler. media may be nil, in which case the
// upload endpoint is not mounted.
func NewHandler(
	users service.UserService,
	cards service.CardService,
	tokens *auth.TokenManager,
	media storage.Service,
	logger *logrus.Logger,
	authRPS float64,
	authBurst int,
) *Handler {
	return &Handler{
		users:     users,
		cards:     cards,
		tokens:    tokens,
		media:     media,
		logger:    logger,
		authRPS:   authRPS,
		authBurst: authBurst,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(h.errorResponder())

	authLimit := rateLimitByIP(h.authRPS, h.authBurst)
	router.POST("/signup", authLimit, h.signUp)
	router.POST("/signin", authLimit, h.signIn)

	router.GET("/users", h.listUsers)
	router.GET("/users/:userId", h.getUser)

	protected := router.Group("", h.requireAuth())
	protected.PATCH("/users/me", h.updateProfile)
	protected.PATCH("/users/me/avatar", h.updateAvatar)
	protected.GET("/cards", h.listCards)
	protected.POST("/cards", h.createCard)
	protected.DELETE("/cards/:cardId", h.deleteCard)
	protected.PUT("/cards/:cardId/likes", h.likeCard)
	protected.DELETE("/cards/:cardId/likes", h.unlikeCard)
	if h.media != nil {
		protected.POST("/media", h.uploadPhoto)
	}

	router.GET("/crash-test", h.crashTest)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": msgRouteNotFound})
	})
}

type signUpRequest struct {
	Name     string `json:"name"`
	About    string `json:"about"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Wrap(domain.KindValidation, msgBadBody, err))
		return
	}

	token, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		About:    req.About,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Wrap(domain.KindValidation, msgBadBody, err))
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *Handler) getUser(c *gin.Context) {
	id := c.Param("userId")
	if id == "me" {
		// gin's router cannot register /users/me beside /users/:userId on
		// the same method, so the alias is resolved here
		subject, err := h.subjectFromHeader(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		id = subject
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Wrap(domain.KindValidation, msgBadBody, err))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), h.subject(c), req.Name, req.About)
	if err != nil {
		h.fail(c, err)
		return
	}

	// legacy contract: echo only the updated fields
	c.JSON(http.StatusOK, gin.H{"name": user.Name, "about": user.About})
}

type updateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

func (h *Handler) updateAvatar(c *gin.Context) {
	var req updateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Wrap(domain.KindValidation, msgBadBody, err))
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), h.subject(c), req.Avatar)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) listCards(c *gin.Context) {
	cards, err := h.cards.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]CardResponse, len(cards))
	for i := range cards {
		resp[i] = cardToResponse(cards[i])
	}
	c.JSON(http.StatusOK, resp)
}

type createCardRequest struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

func (h *Handler) createCard(c *gin.Context) {
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.Wrap(domain.KindValidation, msgBadBody, err))
		return
	}

	card, err := h.cards.Create(c.Request.Context(), h.subject(c), req.Name, req.Link)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, cardToResponse(*card))
}

func (h *Handler) deleteCard(c *gin.Context) {
	card, err := h.cards.Delete(c.Request.Context(), h.subject(c), c.Param("cardId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cardToResponse(*card))
}

func (h *Handler) likeCard(c *gin.Context) {
	card, err := h.cards.Like(c.Request.Context(), h.subject(c), c.Param("cardId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cardToResponse(*card))
}

func (h *Handler) unlikeCard(c *gin.Context) {
	card, err := h.cards.Unlike(c.Request.Context(), h.subject(c), c.Param("cardId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cardToResponse(*card))
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		h.fail(c, domain.E(domain.KindValidation, "photo file is required"))
		return
	}
	if file.Size > maxPhotoSize {
		h.fail(c, domain.E(domain.KindValidation, "photo exceeds the size limit"))
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.fail(c, domain.E(domain.KindValidation, "photo must be an image"))
		return
	}

	src, err := file.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer src.Close()

	url, err := h.media.UploadPhoto(c.Request.Context(), filepath.Ext(file.Filename), contentType, src)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// crashTest intentionally kills the process: the panic fires on a fresh
// goroutine where no recovery middleware can reach it. Exists for
// supervisor restart testing only.
func (h *Handler) crashTest(c *gin.Context) {
	time.AfterFunc(0, func() {
		panic("server is about to crash")
	})
}

type UserResponse struct {
	ID     string `json:"_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	About  string `json:"about"`
	Avatar string `json:"avatar"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		About:  user.About,
		Avatar: user.Avatar,
	}
}

type CardResponse struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Link      string   `json:"link"`
	Owner     string   `json:"owner"`
	Likes     []string `json:"likes"`
	CreatedAt string   `json:"createdAt"`
}

func cardToResponse(card domain.Card) CardResponse {
	likes := card.Likes
	if likes == nil {
		likes = []string{}
	}
	return CardResponse{
		ID:        card.ID,
		Name:      card.Name,
		Link:      card.Link,
		Owner:     card.Owner,
		Likes:     likes,
		CreatedAt: card.CreatedAt.Format(time.RFC3339),
	}
}
