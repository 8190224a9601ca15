package handlers

import (
	"net/http"

	appgraphql "blog-backend/internal/graphql"
	"blog-backend/internal/middleware"
	"blog-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the full HTTP surface: REST routes behind the hard
// auth gate, the GraphQL endpoint behind the soft gate, static image
// serving, and the feed event stream.
func NewRouter(auth *services.AuthService, feed *services.FeedService, hub *services.Hub, imagesDir string) http.Handler {
	authHandler := NewAuthHandler(auth)
	feedHandler := NewFeedHandler(feed, hub)
	imageHandler := NewImageHandler(feed)
	wsHandler := NewWebSocketHandler(hub, auth)
	gqlHandler := appgraphql.NewHandler(auth, feed)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/auth", func(r chi.Router) {
		r.Put("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth))
			r.Get("/status", authHandler.GetStatus)
			r.Patch("/status", authHandler.UpdateStatus)
		})
	})

	r.Route("/feed", func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth))
		r.Get("/posts", feedHandler.GetPosts)
		r.Post("/post", feedHandler.CreatePost)
		r.Get("/post/{postId}", feedHandler.GetPost)
		r.Put("/post/{postId}", feedHandler.UpdatePost)
		r.Delete("/post/{postId}", feedHandler.DeletePost)
	})

	r.With(middleware.RequireAuth(auth)).Put("/post-image", imageHandler.Upload)

	r.With(middleware.Annotate(auth)).Post("/graphql", gqlHandler.ServeHTTP)

	r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir))))

	r.Get("/ws", wsHandler.Serve)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
