package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/thoughtslabs/thoughts-backend/auth"
	"github.com/thoughtslabs/thoughts-backend/config"
	"github.com/thoughtslabs/thoughts-backend/controllers"
	"github.com/thoughtslabs/thoughts-backend/database"
	"github.com/thoughtslabs/thoughts-backend/httperr"
	"github.com/thoughtslabs/thoughts-backend/middleware"
	"github.com/thoughtslabs/thoughts-backend/storage"
	"github.com/thoughtslabs/thoughts-backend/store"
	"github.com/thoughtslabs/thoughts-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Connected to the Database:", cfg.DatabaseName)

	if err := db.EnsureIndexes(ctx, cfg.AccessTokenTTL); err != nil {
		log.Fatal(err)
	}

	users := store.NewMongoUserStore(db.Collection(database.UsersCollection))

	var blacklist store.TokenBlacklist
	if cfg.BlacklistBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis ping: ", err)
		}
		blacklist = store.NewRedisBlacklist(rdb, cfg.AccessTokenTTL)
	} else {
		blacklist = store.NewMongoBlacklist(db.Collection(database.BlacklistedTokensCollection))
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, blacklist)

	uploader, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	uc := controllers.NewUserController(users, tokens, uploader, utils.NewImageValidator(cfg.MaxUploadBytes))

	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(httperr.Handler(cfg.ExposeStackTraces))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Hello, from the Server..!"})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api/users")
	{
		api.POST("/register", uc.Register())
		api.POST("/login", uc.Login())

		authed := api.Group("")
		authed.Use(middleware.Authenticate(tokens))
		{
			authed.GET("/current", uc.Current())
			authed.POST("/logout", uc.Logout())
			authed.GET("/:userId", uc.GetUser())
			authed.PUT("/:userId/profile-img-upload", uc.UploadProfileImg())
			authed.PUT("/:userId/update-user-profile", uc.UpdateProfile())
		}
	}

	log.Println("Server started on the port:", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
