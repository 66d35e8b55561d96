package http

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"myflix-api/internal/auth"
	"myflix-api/internal/domain"
	"myflix-api/internal/service"
	"myflix-api/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users         service.UserService
	catalog       service.CatalogService
	authenticator *auth.Authenticator
	posters       storage.Service
	bucket        string
	keyPrefix     string
	logger        *logrus.Logger
}

func NewHandler(
	users service.UserService,
	catalog service.CatalogService,
	authenticator *auth.Authenticator,
	posters storage.Service,
	bucket, keyPrefix string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:         users,
		catalog:       catalog,
		authenticator: authenticator,
		posters:       posters,
		bucket:        bucket,
		keyPrefix:     keyPrefix,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(requestLogMiddleware(h.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Registration and login are the only endpoints reachable without a token.
	router.POST("/login", h.login)
	router.POST("/users", h.register)

	protected := router.Group("/", auth.RequireAuth(h.authenticator))
	{
		protected.GET("/users", h.listUsers)
		protected.GET("/users/:username", h.getUser)
		protected.PUT("/users/:username", h.updateUser)
		protected.DELETE("/users/:username", h.deleteUser)
		protected.POST("/users/:username/movies/:movieID", h.addFavorite)
		protected.DELETE("/users/:username/movies/:movieID", h.removeFavorite)

		protected.GET("/movies", h.listMovies)
		protected.POST("/movies", h.createMovie)
		protected.GET("/movies/:title", h.getMovie)
		protected.GET("/movies/:title/poster", h.getPoster)
		protected.PUT("/movies/:title/poster", h.uploadPoster)
		protected.DELETE("/movies/:title/poster", h.deletePoster)

		protected.GET("/genres", h.listGenres)
		protected.GET("/genres/:name", h.getGenre)
		protected.GET("/directors", h.listDirectors)
		protected.GET("/directors/:name", h.getDirector)
		protected.GET("/posters", h.listPosters)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type loginRequest struct {
	Username string `json:"Username" binding:"required"`
	Password string `json:"Password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Something is not right", "user": nil})
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrMissingCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Something is not right", "user": nil})
			return
		}
		h.logger.WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userToResponse(user),
		"token": token,
	})
}

type registerRequest struct {
	Username string `json:"Username" binding:"required"`
	Password string `json:"Password" binding:"required"`
	Email    string `json:"Email" binding:"required"`
	Birthday string `json:"Birthday"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	birthday, err := parseDate(req.Birthday)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid birthday"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Birthday: birthday,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": req.Username + " already exists"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	username := c.Param("username")
	if !h.requireOwnership(c, username) {
		return
	}

	user, err := h.users.Get(c.Request.Context(), username)
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

type updateUserRequest struct {
	Password *string `json:"Password"`
	Email    *string `json:"Email"`
	Birthday *string `json:"Birthday"`
}

func (h *Handler) updateUser(c *gin.Context) {
	username := c.Param("username")
	if !h.requireOwnership(c, username) {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateInput{
		Password: req.Password,
		Email:    req.Email,
	}
	if req.Birthday != nil {
		birthday, err := parseDate(*req.Birthday)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid birthday"})
			return
		}
		input.Birthday = birthday
	}

	user, err := h.users.Update(c.Request.Context(), username, input)
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	username := c.Param("username")
	if !h.requireOwnership(c, username) {
		return
	}

	if err := h.users.Delete(c.Request.Context(), username); err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": username})
}

func (h *Handler) addFavorite(c *gin.Context) {
	username := c.Param("username")
	if !h.requireOwnership(c, username) {
		return
	}

	user, err := h.users.AddFavorite(c.Request.Context(), username, c.Param("movieID"))
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) removeFavorite(c *gin.Context) {
	username := c.Param("username")
	if !h.requireOwnership(c, username) {
		return
	}

	user, err := h.users.RemoveFavorite(c.Request.Context(), username, c.Param("movieID"))
	if err != nil {
		h.userError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) listMovies(c *gin.Context) {
	movies, err := h.catalog.ListMovies(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]MovieResponse, len(movies))
	for i := range movies {
		resp[i] = movieToResponse(&movies[i])
	}
	c.JSON(http.StatusOK, resp)
}

type createMovieRequest struct {
	Title       string   `json:"Title" binding:"required"`
	Description string   `json:"Description" binding:"required"`
	Genre       Genre    `json:"Genre" binding:"required"`
	Director    Director `json:"Director" binding:"required"`
	ImagePath   string   `json:"ImagePath"`
	Actors      []string `json:"Actors"`
	Featured    bool     `json:"Featured"`
}

func (h *Handler) createMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	movie, err := h.catalog.AddMovie(c.Request.Context(), &domain.Movie{
		Title:       req.Title,
		Description: req.Description,
		Genre:       domain.Genre(req.Genre),
		Director:    domain.Director(req.Director),
		ImagePath:   req.ImagePath,
		Actors:      req.Actors,
		Featured:    req.Featured,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, movieToResponse(movie))
}

func (h *Handler) getMovie(c *gin.Context) {
	movie, err := h.catalog.GetMovie(c.Request.Context(), c.Param("title"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, movieToResponse(movie))
}

func (h *Handler) getPoster(c *gin.Context) {
	url, err := h.catalog.PosterURL(c.Request.Context(), c.Param("title"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *Handler) uploadPoster(c *gin.Context) {
	if h.posters == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poster storage not configured"})
		return
	}

	file, header, err := c.Request.FormFile("poster")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "poster file is required"})
		return
	}
	defer file.Close()

	movie, err := h.catalog.GetMovie(c.Request.Context(), c.Param("title"))
	if err != nil {
		h.catalogError(c, err)
		return
	}

	key := posterKey(h.keyPrefix, movie.ID, header.Filename)
	if _, err := h.posters.UploadPoster(c.Request.Context(), h.bucket, key, file, header.Header.Get("Content-Type")); err != nil {
		h.serverError(c, err)
		return
	}

	updated, err := h.catalog.SetPoster(c.Request.Context(), movie.ID, key)
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, movieToResponse(updated))
}

func (h *Handler) deletePoster(c *gin.Context) {
	if h.posters == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poster storage not configured"})
		return
	}

	movie, err := h.catalog.GetMovie(c.Request.Context(), c.Param("title"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	if movie.ImagePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie has no poster"})
		return
	}

	if err := h.posters.DeletePoster(c.Request.Context(), h.bucket, movie.ImagePath); err != nil {
		h.serverError(c, err)
		return
	}
	if _, err := h.catalog.SetPoster(c.Request.Context(), movie.ID, ""); err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": movie.ImagePath})
}

func (h *Handler) listPosters(c *gin.Context) {
	if h.posters == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poster storage not configured"})
		return
	}

	objects, err := h.posters.ListPosters(c.Request.Context(), h.bucket, c.Query("prefix"))
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listGenres(c *gin.Context) {
	genres, err := h.catalog.ListGenres(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]Genre, len(genres))
	for i := range genres {
		resp[i] = Genre(genres[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getGenre(c *gin.Context) {
	genre, err := h.catalog.GetGenre(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, Genre(*genre))
}

func (h *Handler) listDirectors(c *gin.Context) {
	directors, err := h.catalog.ListDirectors(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]Director, len(directors))
	for i := range directors {
		resp[i] = Director(directors[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getDirector(c *gin.Context) {
	director, err := h.catalog.GetDirector(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, Director(*director))
}

// requireOwnership enforces that the authenticated caller owns the resource
// named in the path. Writes a 403 and aborts when the check fails.
func (h *Handler) requireOwnership(c *gin.Context, ownerUsername string) bool {
	caller := auth.CurrentIdentity(c)
	if err := auth.Authorize(caller, ownerUsername); err != nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return false
	}
	return true
}

func (h *Handler) userError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyFavorite), errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMovieNotFound),
		errors.Is(err, service.ErrGenreNotFound),
		errors.Is(err, service.ErrDirectorNotFound),
		errors.Is(err, service.ErrPosterUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized date format")
}

func posterKey(prefix, movieID, filename string) string {
	ext := path.Ext(filename)
	key := "posters/" + movieID + ext
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

type UserResponse struct {
	Username       string   `json:"Username"`
	Email          string   `json:"Email"`
	Birthday       *string  `json:"Birthday,omitempty"`
	FavoriteMovies []string `json:"FavoriteMovies"`
	CreatedAt      string   `json:"CreatedAt,omitempty"`
	UpdatedAt      string   `json:"UpdatedAt,omitempty"`
}

type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

type Director struct {
	Name  string `json:"Name"`
	Bio   string `json:"Bio"`
	Birth string `json:"Birth"`
	Death string `json:"Death,omitempty"`
}

type MovieResponse struct {
	ID          string   `json:"ID"`
	Title       string   `json:"Title"`
	Description string   `json:"Description"`
	Genre       Genre    `json:"Genre"`
	Director    Director `json:"Director"`
	ImagePath   string   `json:"ImagePath"`
	Actors      []string `json:"Actors"`
	Featured    bool     `json:"Featured"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		Username:       user.Username,
		Email:          user.Email,
		FavoriteMovies: user.FavoriteMovies,
	}
	if resp.FavoriteMovies == nil {
		resp.FavoriteMovies = []string{}
	}
	if user.Birthday != nil {
		v := user.Birthday.Format("2006-01-02")
		resp.Birthday = &v
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	if !user.UpdatedAt.IsZero() {
		resp.UpdatedAt = user.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func movieToResponse(movie *domain.Movie) MovieResponse {
	resp := MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Description: movie.Description,
		Genre:       Genre(movie.Genre),
		Director:    Director(movie.Director),
		ImagePath:   movie.ImagePath,
		Actors:      movie.Actors,
		Featured:    movie.Featured,
	}
	if resp.Actors == nil {
		resp.Actors = []string{}
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
